package cmd

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/brainora/brainora/internal/session"
)

var exportOutput string

var exportCmd = &cobra.Command{
	Use:   "export [n]",
	Short: "Export a conversation as plain text",
	Long: `Export conversation n from the sessions list as plain text.
Defaults to the most recent conversation.

With --output, generated images are decoded from their data URLs and
written next to the text file. On stdout, images are noted but skipped.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "write to file instead of stdout")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	n := 1
	if len(args) == 1 {
		var err error
		if n, err = strconv.Atoi(args[0]); err != nil {
			return fmt.Errorf("expected a conversation number, got %q", args[0])
		}
	}

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close(ctx) }()

	sessions := a.Store.Sessions()
	if len(sessions) == 0 {
		return fmt.Errorf("no saved conversations to export")
	}
	if n < 1 || n > len(sessions) {
		return fmt.Errorf("no conversation %d, run `brainora sessions list`", n)
	}
	target := sessions[n-1]

	if exportOutput == "" {
		fmt.Print(renderTranscript(target, nil))
		return nil
	}

	var imagePaths []string
	for i, msg := range target.Messages {
		if msg.ImageURL == "" {
			continue
		}
		path, err := writeImage(exportOutput, i, msg.ImageURL)
		if err != nil {
			a.Logger.Warn("skipping image export", "error", err)
			continue
		}
		imagePaths = append(imagePaths, path)
	}

	if err := os.WriteFile(exportOutput, []byte(renderTranscript(target, imagePaths)), 0o600); err != nil {
		return fmt.Errorf("writing transcript: %w", err)
	}

	fmt.Printf("Exported %q to %s", target.Title, exportOutput)
	if len(imagePaths) > 0 {
		fmt.Printf(" with %d image(s)", len(imagePaths))
	}
	fmt.Println()
	return nil
}

// renderTranscript formats a session as plain text. imagePaths, when
// non-nil, are referenced in order for messages carrying images.
func renderTranscript(s *session.Session, imagePaths []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n%s\n\n", s.Title, s.CreatedAt.Format("2006-01-02 15:04"))

	imageIdx := 0
	for _, msg := range s.Messages {
		speaker := "You"
		if msg.Role == session.RoleAssistant {
			speaker = "Brainora"
		}
		fmt.Fprintf(&b, "%s: %s\n", speaker, msg.Content)

		if msg.ImageURL != "" {
			if imageIdx < len(imagePaths) {
				fmt.Fprintf(&b, "  [image: %s]\n", imagePaths[imageIdx])
				imageIdx++
			} else {
				b.WriteString("  [image omitted, use --output to save images]\n")
			}
		}
		for i, c := range msg.Citations {
			fmt.Fprintf(&b, "  [%d] %s (%s)\n", i+1, c.Title, c.URI)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// writeImage decodes a data URL and writes it next to the transcript file.
// Returns the written path.
func writeImage(transcriptPath string, msgIdx int, dataURL string) (string, error) {
	mime, data, err := decodeDataURL(dataURL)
	if err != nil {
		return "", err
	}

	ext := ".png"
	if idx := strings.LastIndex(mime, "/"); idx >= 0 && idx < len(mime)-1 {
		ext = "." + mime[idx+1:]
	}

	base := strings.TrimSuffix(transcriptPath, filepath.Ext(transcriptPath))
	path := fmt.Sprintf("%s-image-%d%s", base, msgIdx+1, ext)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", err
	}
	return path, nil
}

// decodeDataURL splits a "data:<mime>;base64,<payload>" URL into its MIME
// type and decoded bytes.
func decodeDataURL(u string) (mime string, data []byte, err error) {
	rest, ok := strings.CutPrefix(u, "data:")
	if !ok {
		return "", nil, fmt.Errorf("not a data URL")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, fmt.Errorf("malformed data URL")
	}
	mime, ok = strings.CutSuffix(meta, ";base64")
	if !ok {
		return "", nil, fmt.Errorf("data URL is not base64 encoded")
	}
	data, err = base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("decoding image payload: %w", err)
	}
	return mime, data, nil
}
