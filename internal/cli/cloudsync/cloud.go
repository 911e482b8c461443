package cloudsync

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/dustin/go-humanize"

	"github.com/julianstephens/studywith/internal/cli"
	"github.com/julianstephens/studywith/internal/cloud"
	"github.com/julianstephens/studywith/internal/keyring"
)

type CloudURLCmd struct {
	URL string `arg:"" optional:"" help:"Server base URL to store. Prints the current one when omitted."`
}

func (c *CloudURLCmd) Run(ctx *cli.Context) error {
	if c.URL == "" {
		if ctx.Config.Cloud.BaseURL == "" {
			fmt.Println("No cloud server configured.")
			return nil
		}
		fmt.Println(ctx.Config.Cloud.BaseURL)
		if name, err := keyring.GetCloudUsername(); err == nil {
			fmt.Printf("Logged in as %s\n", name)
		}
		return nil
	}

	ctx.Config.Cloud.BaseURL = cloud.NormalizeBaseURL(c.URL)
	path := ctx.ConfigPath()
	if err := ctx.Config.Save(path); err != nil {
		return err
	}
	fmt.Printf("✓ Cloud server set to %s (saved to %s)\n", ctx.Config.Cloud.BaseURL, path)
	return nil
}

type CloudLoginCmd struct {
	Username string `arg:"" help:"Account name."`
	Register bool   `help:"Create the account instead of logging in."`
	Password string `help:"Password. Prompted for when omitted." env:"STUDYWITH_CLOUD_PASSWORD"`
}

func (c *CloudLoginCmd) Run(ctx *cli.Context) error {
	client, err := ctx.CloudClient()
	if err != nil {
		return err
	}

	password := c.Password
	if password == "" {
		err := huh.NewInput().
			Title(fmt.Sprintf("Password for %s", c.Username)).
			EchoMode(huh.EchoModePassword).
			Value(&password).
			Run()
		if err != nil {
			return err
		}
	}
	if strings.TrimSpace(password) == "" {
		return errors.New("password cannot be empty")
	}

	var user cloud.User
	if c.Register {
		user, err = client.Register(context.Background(), c.Username, password)
	} else {
		user, err = client.Login(context.Background(), c.Username, password)
	}
	if err != nil {
		return err
	}
	if !client.IsLoggedIn() {
		if c.Register {
			fmt.Printf("✓ Account %s created. Log in with 'studywith cloud login %s'.\n", user.Username, user.Username)
			return nil
		}
		return cloud.ErrNotLoggedIn
	}

	if err := keyring.SetCloudToken(client.Token()); err != nil {
		return fmt.Errorf("logged in, but the token could not be stored: %w", err)
	}
	if err := keyring.SetCloudUsername(user.Username); err != nil {
		return fmt.Errorf("logged in, but the username could not be stored: %w", err)
	}
	fmt.Printf("✓ Logged in as %s\n", user.Username)
	return nil
}

type CloudLogoutCmd struct{}

func (c *CloudLogoutCmd) Run(ctx *cli.Context) error {
	if err := keyring.ClearCloudLogin(); err != nil {
		return err
	}
	fmt.Println("✓ Logged out")
	return nil
}

type CloudUploadCmd struct{}

func (c *CloudUploadCmd) Run(ctx *cli.Context) error {
	client, err := ctx.CloudClient()
	if err != nil {
		return err
	}
	stats := ctx.Sessions.Statistics()
	profile, err := client.UploadProfile(context.Background(), stats.TotalScore, string(stats.Rank))
	if err != nil {
		return err
	}
	fmt.Printf("✓ Uploaded score %s (%s)\n", humanize.Comma(int64(profile.TotalScore)), profile.Rank)
	return nil
}

type CloudSyncCmd struct {
	Dir string `help:"Preset directory. Defaults to presets_dir from the config file." type:"path"`
}

func (c *CloudSyncCmd) Run(ctx *cli.Context) error {
	client, err := ctx.CloudClient()
	if err != nil {
		return err
	}
	dir := c.Dir
	if dir == "" {
		dir = ctx.Presets().Path()
	}

	res, err := client.SyncPresetsDir(context.Background(), dir)
	if err != nil {
		return err
	}
	fmt.Printf("✓ Presets synced: %d uploaded, %d downloaded (%s)\n", res.Uploaded, res.Downloaded, dir)
	return nil
}
