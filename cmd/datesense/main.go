package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/hrygo/datesense/internal/profile"
	"github.com/hrygo/datesense/internal/version"
	"github.com/hrygo/datesense/plugin/datetext"
	"github.com/hrygo/datesense/server"
)

// app carries state shared by the commands of one invocation.
type app struct {
	configFile string
	profile    *profile.Profile
}

func newRootCmd() *cobra.Command {
	a := &app{}
	rootCmd := &cobra.Command{
		Use:               "datesense",
		Short:             "Find date and time expressions in text and resolve them to instants",
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.load,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "path to a YAML config file")
	flags.String(profile.KeyMode, "demo", `mode of server, can be "prod" or "dev" or "demo"`)
	flags.String(profile.KeyLocale, "en-US", "BCP 47 locale deciding the order of numeric dates")
	flags.String(profile.KeyTimezone, "UTC", "IANA zone or UTC offset used for the reference instant")
	flags.Bool(profile.KeyForwardDate, false, "move dates with an inferred year to on or after the reference")
	flags.Bool(profile.KeyStrict, false, "accept only complete calendar dates")
	flags.String(profile.KeyLogLevel, "info", "log level: debug, info, warn or error")

	rootCmd.AddCommand(
		a.newParseCmd(),
		a.newBatchCmd(),
		a.newServeCmd(),
		a.newVersionCmd(),
	)
	return rootCmd
}

// load builds the profile from flags, env and the config file, and
// configures logging.
func (a *app) load(cmd *cobra.Command, _ []string) error {
	v, err := profile.NewViper(a.configFile)
	if err != nil {
		return err
	}
	var bindErr error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if err := v.BindPFlag(f.Name, f); err != nil && bindErr == nil {
			bindErr = err
		}
	})
	if bindErr != nil {
		return bindErr
	}

	p, err := profile.Load(v)
	if err != nil {
		return err
	}
	p.Version = version.GetCurrentVersion(p.Mode)
	if err := p.Validate(); err != nil {
		return err
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: p.SlogLevel()})))
	a.profile = p
	return nil
}

func (a *app) newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			p := a.profile
			s, err := server.NewServer(ctx, p, datetext.NewService(p.Locale, p.Timezone))
			if err != nil {
				return err
			}

			errCh := make(chan error, 1)
			go func() {
				errCh <- s.Start(ctx)
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
				s.Shutdown(context.Background())
				return nil
			}
		},
	}

	flags := cmd.Flags()
	flags.String(profile.KeyAddr, "", "address of server")
	flags.Int(profile.KeyPort, 8081, "port of server")
	flags.Int(profile.KeyConcurrency, 4, "documents parsed at once in a batch")
	flags.Int(profile.KeyMaxInputLength, 64*1024, "longest accepted document, in bytes")
	flags.Int(profile.KeyMaxBatchSize, 100, "most documents accepted in one batch")
	flags.Float64(profile.KeyRateLimit, 10, "requests per second per client; 0 disables limiting")
	flags.Int(profile.KeyRateBurst, 20, "burst size of the per-client limit")
	flags.Int(profile.KeyContextChars, 40, "snippet width around each match; 0 disables snippets")
	flags.Int(profile.KeyCacheSize, 1024, "parse results kept in memory; 0 disables the cache")
	flags.Duration(profile.KeyCacheTTL, 5*time.Minute, "how long a cached parse result stays valid")
	return cmd
}

func (a *app) newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), a.profile.Version)
			return err
		},
	}
}

func execute(args []string, in io.Reader, out, errOut io.Writer) error {
	rootCmd := newRootCmd()
	rootCmd.SetArgs(args)
	rootCmd.SetIn(in)
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)
	return rootCmd.Execute()
}

func main() {
	if err := execute(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
