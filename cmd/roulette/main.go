package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli"
)

var version = "dev"

var globalFlags = []cli.Flag{
	cli.StringFlag{
		Name:  "env-file",
		Value: ".env",
		Usage: "optional dotenv file loaded before reading the environment",
	},
	cli.StringFlag{
		Name:  "backend-url",
		Usage: "restaurant search backend base URL (overrides BACKEND_URL)",
	},
	cli.StringFlag{
		Name:  "signup-url",
		Usage: "signup service base URL (overrides SIGNUP_URL)",
	},
	cli.StringFlag{
		Name:  "session-driver",
		Usage: "file, memory or redis (overrides SESSION_DRIVER)",
	},
	cli.StringFlag{
		Name:  "session-file",
		Usage: "session file path for the file driver (overrides SESSION_FILE)",
	},
	cli.StringFlag{
		Name:  "log-level",
		Usage: "debug, info, warn or error (overrides LOG_LEVEL)",
	},
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "roulette"
	app.Usage = "find a restaurant near you"
	app.Version = version
	app.Flags = globalFlags
	app.Commands = commands()
	return app
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
