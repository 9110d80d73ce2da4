// Copyright (c) 2019 Perlin
//
// Permission is hereby granted, free of charge, to any person obtaining a copy of
// this software and associated documentation files (the "Software"), to deal in
// the Software without restriction, including without limitation the rights to
// use, copy, modify, merge, publish, distribute, sublicense, and/or sell copies of
// the Software, and to permit persons to whom the Software is furnished to do so,
// subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY, FITNESS
// FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE AUTHORS OR
// COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER
// IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN
// CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE SOFTWARE.

package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/perlin-network/votedeploy/conf"
	"github.com/perlin-network/votedeploy/log"
	"github.com/perlin-network/votedeploy/sys"
	"github.com/pkg/errors"
	"github.com/urfave/cli"
	"github.com/urfave/cli/altsrc"
)

func main() {
	os.Exit(Run(os.Args, os.Stdout, os.Stderr))
}

// Run executes the command line and returns the process exit code.
func Run(args []string, stdout, stderr io.Writer) int {
	app := cli.NewApp()

	app.Name = "votedeploy"
	app.Author = "Perlin Network"
	app.Email = "support@perlin.net"
	app.Version = sys.Version
	app.Usage = "deploy the VotingSystem contract template to an Ethereum compatible chain"
	app.Writer = stdout
	app.ErrWriter = stderr

	flags := []cli.Flag{
		cli.StringFlag{
			Name:  "config",
			Usage: "YAML `FILE` providing values for any of the flags below.",
		},
		altsrc.NewStringFlag(cli.StringFlag{
			Name:   "rpc",
			Value:  sys.DefaultRPC,
			Usage:  "JSON-RPC endpoint `URL` of the target chain.",
			EnvVar: "VOTEDEPLOY_RPC",
		}),
		altsrc.NewIntFlag(cli.IntFlag{
			Name:   "chain-id",
			Usage:  "expected chain `ID`, checked against the endpoint. Zero accepts any chain.",
			EnvVar: "VOTEDEPLOY_CHAIN_ID",
		}),
		altsrc.NewStringFlag(cli.StringFlag{
			Name:   "artifacts",
			Value:  sys.DefaultArtifactsDir,
			Usage:  "`DIR` holding compiled contract artifacts (Hardhat artifacts/ or Foundry out/).",
			EnvVar: "VOTEDEPLOY_ARTIFACTS",
		}),
		altsrc.NewStringFlag(cli.StringFlag{
			Name:   "template",
			Value:  sys.DefaultTemplate,
			Usage:  "contract template `NAME`, bare or source.sol:Name.",
			EnvVar: "VOTEDEPLOY_TEMPLATE",
		}),
		altsrc.NewStringSliceFlag(cli.StringSliceFlag{
			Name:   "candidates",
			Usage:  "candidate `NAME`, repeat for each candidate in order (default: Alice, Bob, Charlie).",
			EnvVar: "VOTEDEPLOY_CANDIDATES",
		}),
		altsrc.NewStringFlag(cli.StringFlag{
			Name:   "privkey",
			Usage:  "deployer private key (hex) `KEY`.",
			EnvVar: "VOTEDEPLOY_PRIVKEY",
		}),
		altsrc.NewStringFlag(cli.StringFlag{
			Name:   "keyfile",
			Usage:  "deployer key `FILE` (hex, plain text or encrypted key file).",
			EnvVar: "VOTEDEPLOY_KEYFILE",
		}),
		altsrc.NewStringFlag(cli.StringFlag{
			Name:   "password",
			Usage:  "`PASSWORD` of an encrypted key file.",
			EnvVar: "VOTEDEPLOY_PASSWORD",
		}),
		altsrc.NewIntFlag(cli.IntFlag{
			Name:   "gas-limit",
			Usage:  "fixed gas `LIMIT` for the deployment. Zero estimates it.",
			EnvVar: "VOTEDEPLOY_GAS_LIMIT",
		}),
		altsrc.NewDurationFlag(cli.DurationFlag{
			Name:   "confirm-timeout",
			Value:  sys.DefaultConfirmTimeout,
			Usage:  "how long to wait for the deployment to be confirmed.",
			EnvVar: "VOTEDEPLOY_CONFIRM_TIMEOUT",
		}),
		altsrc.NewDurationFlag(cli.DurationFlag{
			Name:   "poll-interval",
			Value:  sys.DefaultPollInterval,
			Usage:  "how often to poll for the deployment receipt.",
			EnvVar: "VOTEDEPLOY_POLL_INTERVAL",
		}),
		altsrc.NewStringFlag(cli.StringFlag{
			Name:   "db",
			Usage:  "deployment history database `DIR`. Empty disables history.",
			EnvVar: "VOTEDEPLOY_DB",
		}),
		altsrc.NewStringFlag(cli.StringFlag{
			Name:   "loglevel",
			Value:  "info",
			Usage:  "minimum log `LEVEL` (debug, info, warn, error).",
			EnvVar: "VOTEDEPLOY_LOGLEVEL",
		}),
		altsrc.NewBoolFlag(cli.BoolFlag{
			Name:   "json-log",
			Usage:  "write logs as JSON lines instead of console output.",
			EnvVar: "VOTEDEPLOY_JSON_LOG",
		}),
	}

	app.Flags = flags

	cli.VersionPrinter = func(c *cli.Context) {
		fmt.Fprintf(c.App.Writer, "Version: %s\n", c.App.Version)
		fmt.Fprintf(c.App.Writer, "Go Version: %s\n", sys.GoVersion)
		fmt.Fprintf(c.App.Writer, "Git Commit: %s\n", sys.GitCommit)
		fmt.Fprintf(c.App.Writer, "OS/Arch: %s\n", sys.OSArch)
		fmt.Fprintf(c.App.Writer, "Built: %s\n", c.App.Compiled.Format(time.ANSIC))
	}

	app.Before = func(c *cli.Context) error {
		if c.String("config") != "" {
			if err := altsrc.InitInputSourceWithContext(flags, altsrc.NewYamlSourceFromFlagFunc("config"))(c); err != nil {
				return err
			}
		}

		if c.Bool("json-log") {
			log.SetWriter(log.LoggerDefault, stderr)
		} else {
			log.SetWriter(log.LoggerDefault, log.NewConsoleWriter(stderr))
		}

		if err := log.SetLevel(c.String("loglevel")); err != nil {
			return err
		}

		return applyConfig(c)
	}

	app.Action = deployAction

	app.Commands = []cli.Command{
		{
			Name:   "history",
			Usage:  "list deployments recorded in the history database",
			Action: historyAction,
			Flags: []cli.Flag{
				cli.BoolFlag{
					Name:  "json",
					Usage: "print one JSON record per line.",
				},
			},
		},
		{
			Name:  "account",
			Usage: "manage deployer keys",
			Subcommands: []cli.Command{
				{
					Name:      "new",
					Usage:     "generate a deployer key file, encrypted when --password is set",
					ArgsUsage: "FILE",
					Action:    newAccountAction,
				},
			},
		},
	}

	if err := app.Run(args); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	return 0
}

// applyConfig copies the flags into conf. Integer flags stay IntFlags so
// they can be read from the YAML source, and are range checked here.
func applyConfig(c *cli.Context) error {
	for _, name := range []string{"chain-id", "gas-limit"} {
		if c.Int(name) < 0 {
			return errors.Errorf("--%s must not be negative, got %d", name, c.Int(name))
		}
	}

	conf.Reset()

	conf.Update(
		conf.WithRPCURL(c.String("rpc")),
		conf.WithChainID(uint64(c.Int("chain-id"))),
		conf.WithArtifactsDir(c.String("artifacts")),
		conf.WithTemplate(c.String("template")),
		conf.WithCandidates(c.StringSlice("candidates")...),
		conf.WithPrivateKey(c.String("privkey")),
		conf.WithKeyFile(c.String("keyfile"), c.String("password")),
		conf.WithGasLimit(uint64(c.Int("gas-limit"))),
		conf.WithConfirmTimeout(c.Duration("confirm-timeout")),
		conf.WithPollInterval(c.Duration("poll-interval")),
		conf.WithDBDir(c.String("db")),
	)

	logger := log.Deploy("")
	logger.Debug().Msgf("Config: %s", conf.Stringify())

	return nil
}
