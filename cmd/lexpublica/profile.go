package main

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/acoulibaly-ghb/lex-publica-admin-l2hz/internal/domain"
	"github.com/spf13/cobra"
)

func newProfileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Student profile commands",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List known profiles",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, a *app, _ []string) error {
			current, _ := a.store.CurrentProfile()
			printProfiles(cmd.OutOrStdout(), a.store.Profiles(), current.ID)
			return nil
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "find <name>",
		Short: "Find profiles by exact name, ignoring case",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
			matches := a.store.FindProfilesByName(args[0])
			if len(matches) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no profile found")
				return nil
			}
			printProfiles(cmd.OutOrStdout(), matches, "")
			return nil
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "create <name>",
		Short: "Create a profile and log in to it",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
			profile := a.store.CreateNewProfile(args[0])
			fmt.Fprintln(cmd.OutOrStdout(), profile.ID)
			return nil
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "login <profile-id>",
		Short: "Log in to an existing profile",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
			a.store.LoginToProfile(args[0])
			current, ok := a.store.CurrentProfile()
			if !ok || current.ID != args[0] {
				return fmt.Errorf("profile %s not found", args[0])
			}
			fmt.Fprintln(cmd.OutOrStdout(), "logged in as", current.Name)
			return nil
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "logout",
		Short: "Log out of the current profile",
		Args:  cobra.NoArgs,
		RunE: withApp(func(_ *cobra.Command, a *app, _ []string) error {
			a.store.LogoutProfile()
			return nil
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the current profile and its scores",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, a *app, _ []string) error {
			current, ok := a.store.CurrentProfile()
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "not logged in")
				return nil
			}
			printProfile(cmd.OutOrStdout(), current)
			return nil
		}),
	})

	return cmd
}

func newScoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "score <topic> <score> <total>",
		Short: "Record a quiz score for the current profile",
		Args:  cobra.ExactArgs(3),
		RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
			current, ok := a.store.CurrentProfile()
			if !ok {
				return fmt.Errorf("not logged in")
			}
			score, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("invalid score %q: %w", args[1], err)
			}
			total, err := strconv.ParseFloat(args[2], 64)
			if err != nil {
				return fmt.Errorf("invalid total %q: %w", args[2], err)
			}

			a.store.SaveScore(current.ID, domain.NewScoreRecord(args[0], score, total, time.Now().Format(time.RFC3339)))
			return nil
		}),
	}
}

func printProfiles(w io.Writer, profiles []domain.StudentProfile, currentID string) {
	for _, p := range profiles {
		marker := " "
		if p.ID == currentID {
			marker = "*"
		}
		fmt.Fprintf(w, "%s %-24s %3d scores\n", marker, p.ID, len(p.Scores))
	}
}

func printProfile(w io.Writer, p domain.StudentProfile) {
	fmt.Fprintf(w, "%s (%s)\n", p.Name, p.ID)
	for _, s := range p.Scores {
		fmt.Fprintf(w, "  %-30s %g/%g  %s\n", s.Topic(), s.Score(), s.Total(), s.Date())
	}
}
