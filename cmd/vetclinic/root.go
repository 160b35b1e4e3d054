package main

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"vet-clinic-records/internal/app"
	"vet-clinic-records/internal/config"
	"vet-clinic-records/internal/menu"
	"vet-clinic-records/internal/platform/logger"

	"github.com/spf13/cobra"
)

// session agrupa lo que cada comando necesita ya resuelto.
type session struct {
	app   *app.App
	log   logger.Logger
	close func() error
}

func newRootCmd(in io.Reader, out io.Writer) *cobra.Command {
	var configFile string

	root := &cobra.Command{
		Use:   "vetclinic",
		Short: "Clinical records for a small veterinary clinic",
		Long: `vetclinic keeps pets, their owners and consultation history.
Without a subcommand it opens the interactive menu: data is loaded from the
CSV/JSON files at startup and written back on exit.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := openSession(cmd, configFile)
			if err != nil {
				return err
			}
			defer s.close()

			ctx := cmd.Context()
			s.app.Load(ctx)
			if err := menu.New(s.app, in, out, s.log).Run(ctx); err != nil {
				s.log.Error("menu stopped", map[string]any{"error": err.Error()})
			}
			s.app.Shutdown(ctx)
			return nil
		},
	}
	root.SetIn(in)
	root.SetOut(out)

	pf := root.PersistentFlags()
	pf.StringVar(&configFile, "config", "", "config file (default ./vetclinic.yaml if present)")
	pf.String("pets-file", "", "pets/owners CSV table")
	pf.String("consultations-file", "", "consultations JSON list")
	pf.String("log-level", "", "debug, info, warn or error")
	pf.String("log-format", "", "text or json")
	pf.String("log-file", "", "append log lines to this file")

	root.AddCommand(newListCmd(&configFile), newHistoryCmd(&configFile))
	return root
}

func newListCmd(configFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print the registered pets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := openSession(cmd, *configFile)
			if err != nil {
				return err
			}
			defer s.close()

			ctx := cmd.Context()
			s.app.Load(ctx)
			list, err := s.app.ListPets(ctx)
			if err != nil {
				return err
			}
			if len(list) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No pets registered.")
				return nil
			}
			for i, line := range list {
				fmt.Fprintf(cmd.OutOrStdout(), "%d. %s\n", i+1, line)
			}
			return nil
		},
	}
}

func newHistoryCmd(configFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "history <pet-number>",
		Short: "Print the consultation history of a pet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("pet number %q: must be a whole number", args[0])
			}

			s, err := openSession(cmd, *configFile)
			if err != nil {
				return err
			}
			defer s.close()

			ctx := cmd.Context()
			s.app.Load(ctx)
			history, err := s.app.GetHistory(ctx, idx)
			if err != nil {
				return err
			}
			if len(history) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No consultations registered for this pet.")
				return nil
			}
			for _, line := range history {
				fmt.Fprintln(cmd.OutOrStdout(), line)
			}
			return nil
		},
	}
}

// openSession resuelve config, abre el log y arma la fachada.
func openSession(cmd *cobra.Command, configFile string) (*session, error) {
	cfg, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return nil, err
	}

	w, closeLog, err := cfg.Log.OpenLogOutput()
	if err != nil {
		return nil, err
	}

	log := logger.New(logger.Options{
		Level:  logger.ParseLevel(cfg.Log.Level),
		Format: logger.ParseFormat(cfg.Log.Format),
		App:    cfg.AppName,
		Output: w,
	})

	if cmd.Context() == nil {
		cmd.SetContext(context.Background())
	}

	return &session{
		app:   app.New(app.Options{Config: cfg, Logger: log}),
		log:   log,
		close: closeLog,
	}, nil
}
