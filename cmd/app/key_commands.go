package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/hardwarexpress/audittrail/cmd/app/commands"
	"github.com/hardwarexpress/audittrail/internal/app"
	auditService "github.com/hardwarexpress/audittrail/internal/audit/service"
	"github.com/hardwarexpress/audittrail/internal/config"
)

func getKeyCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "create-signing-key",
			Usage: "Generate a new KMS-wrapped root key for audit log signing",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "kms-key-uri",
					Value:    "",
					Required: true,
					Usage:    "KMS key URI (e.g., base64key://, gcpkms://projects/.../cryptoKeys/...)",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				return commands.RunCreateSigningKey(
					ctx,
					auditService.NewKMSService(),
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("kms-key-uri"),
				)
			},
		},
	}
}
