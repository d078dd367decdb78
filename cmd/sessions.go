package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/brainora/brainora/internal/session"
)

var sessionsFilter string

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Manage saved conversations",
}

var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved conversations, newest first",
	RunE:  runSessionsList,
}

var sessionsDeleteCmd = &cobra.Command{
	Use:   "delete <n>",
	Short: "Delete conversation n from the list",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionsDelete,
}

func init() {
	sessionsListCmd.Flags().StringVar(&sessionsFilter, "filter", "", "only list conversations whose title contains this text")
	sessionsCmd.AddCommand(sessionsListCmd)
	sessionsCmd.AddCommand(sessionsDeleteCmd)
	rootCmd.AddCommand(sessionsCmd)
}

// filterSessions keeps sessions whose title contains the query,
// case-insensitive. An empty query keeps everything.
func filterSessions(sessions []*session.Session, query string) []*session.Session {
	if query == "" {
		return sessions
	}
	query = strings.ToLower(query)
	var out []*session.Session
	for _, s := range sessions {
		if strings.Contains(strings.ToLower(s.Title), query) {
			out = append(out, s)
		}
	}
	return out
}

func runSessionsList(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close(ctx) }()

	sessions := filterSessions(a.Store.Sessions(), sessionsFilter)
	if len(sessions) == 0 {
		fmt.Println("No saved conversations.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "N\tTITLE\tMESSAGES\tCREATED")
	for i, s := range sessions {
		fmt.Fprintf(w, "%d\t%s\t%d\t%s\n",
			i+1, s.Title, len(s.Messages), s.CreatedAt.Format("2006-01-02 15:04"))
	}
	return w.Flush()
}

func runSessionsDelete(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	n, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("expected a conversation number, got %q", args[0])
	}

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close(ctx) }()

	sessions := a.Store.Sessions()
	if n < 1 || n > len(sessions) {
		return fmt.Errorf("no conversation %d, run `brainora sessions list`", n)
	}

	target := sessions[n-1]
	if err := a.Store.Delete(target.ID); err != nil {
		return fmt.Errorf("deleting conversation: %w", err)
	}

	fmt.Printf("Deleted %q.\n", target.Title)
	return nil
}
