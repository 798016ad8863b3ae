package main

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/acoulibaly-ghb/lex-publica-admin-l2hz/internal/domain"
	"github.com/spf13/cobra"
)

func newSessionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Chat session commands",
	}

	cmd.AddCommand(newSessionListCmd())
	cmd.AddCommand(newSessionNewCmd())
	cmd.AddCommand(newSessionShowCmd())
	cmd.AddCommand(newSessionDeleteCmd())
	cmd.AddCommand(newSessionMessageCmd())
	cmd.AddCommand(newSessionSelectOptionCmd())

	return cmd
}

func newSessionListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List chat sessions, most recent first",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, a *app, _ []string) error {
			printSessions(cmd.OutOrStdout(), a.store.Sessions(), a.store.ActiveSessionID())
			return nil
		}),
	}
}

func newSessionNewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "new",
		Short: "Start a new chat session",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, a *app, _ []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), a.store.CreateNewSession())
			return nil
		}),
	}
}

func newSessionShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [session-id]",
		Short: "Print the messages of a session",
		Args:  cobra.MaximumNArgs(1),
		RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
			if len(args) == 1 && !a.store.SetActiveSession(args[0]) {
				return fmt.Errorf("session %s not found", args[0])
			}
			session, ok := a.store.ActiveSession()
			if !ok {
				return fmt.Errorf("no active session")
			}
			printSession(cmd.OutOrStdout(), session)
			return nil
		}),
	}
}

func newSessionDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <session-id>",
		Short: "Delete a session",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
			a.store.DeleteSession(args[0])
			fmt.Fprintln(cmd.OutOrStdout(), "active:", a.store.ActiveSessionID())
			return nil
		}),
	}
}

func newSessionMessageCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "message <text>",
		Short: "Append a message to a session",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
			sessionID, err := resolveSession(cmd, a)
			if err != nil {
				return err
			}
			role, _ := cmd.Flags().GetString("role")
			if role != string(domain.RoleUser) && role != string(domain.RoleModel) {
				return fmt.Errorf("invalid role %q", role)
			}

			a.store.AddMessageToSession(sessionID, domain.ChatMessage{
				Role:      domain.Role(role),
				Text:      args[0],
				Timestamp: time.Now(),
			})
			fmt.Fprintln(cmd.OutOrStdout(), sessionID)
			return nil
		}),
	}
	cmd.Flags().String("session", "", "session id (defaults to the most recent)")
	cmd.Flags().String("role", string(domain.RoleUser), "message role: user or model")
	return cmd
}

func newSessionSelectOptionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "select-option <message-index> <option>",
		Short: "Record the option chosen for a quiz message",
		Args:  cobra.ExactArgs(2),
		RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
			sessionID, err := resolveSession(cmd, a)
			if err != nil {
				return err
			}
			index, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid message index %q: %w", args[0], err)
			}
			a.store.SelectOptionInMessage(sessionID, index, args[1])
			return nil
		}),
	}
	cmd.Flags().String("session", "", "session id (defaults to the most recent)")
	return cmd
}

func resolveSession(cmd *cobra.Command, a *app) (string, error) {
	sessionID, _ := cmd.Flags().GetString("session")
	if sessionID == "" {
		return a.store.ActiveSessionID(), nil
	}
	if !a.store.SetActiveSession(sessionID) {
		return "", fmt.Errorf("session %s not found", sessionID)
	}
	return sessionID, nil
}

func printSessions(w io.Writer, sessions []domain.ChatSession, activeID string) {
	for _, s := range sessions {
		marker := " "
		if s.ID == activeID {
			marker = "*"
		}
		updated := time.UnixMilli(s.UpdatedAt).Format(time.DateTime)
		fmt.Fprintf(w, "%s %s  %-34s %3d msgs  %s\n", marker, s.ID, s.Title, len(s.Messages), updated)
	}
}

func printSession(w io.Writer, session domain.ChatSession) {
	fmt.Fprintf(w, "%s (%s)\n", session.Title, session.ID)
	for i, m := range session.Messages {
		fmt.Fprintf(w, "[%d] %s: %s\n", i, m.Role, m.Text)
		if m.SelectedOption != nil {
			fmt.Fprintf(w, "    selected: %s\n", *m.SelectedOption)
		}
	}
}
