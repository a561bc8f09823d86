package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/taqdeer/taqdeer-api/internal/guidance"
	"github.com/taqdeer/taqdeer-api/internal/reference"
	"github.com/taqdeer/taqdeer-api/pkg/client"
)

type rootOptions struct {
	apiURL  string
	timeout time.Duration
	asJSON  bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:          "taqdeer",
		Short:        "Find du'as and rulings from the Taqdeer API",
		SilenceUsage: true,
	}

	defaultURL := os.Getenv("TAQDEER_API_URL")
	if defaultURL == "" {
		defaultURL = "http://localhost:8080"
	}
	root.PersistentFlags().StringVar(&opts.apiURL, "api-url", defaultURL, "base URL of the Taqdeer API (env TAQDEER_API_URL)")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", client.DefaultTimeout, "request timeout")
	root.PersistentFlags().BoolVar(&opts.asJSON, "json", false, "print raw JSON")

	root.AddCommand(
		newSearchCmd(opts, guidance.ModeDua, "dua [situation...]", "Generate a du'a for a situation or need"),
		newSearchCmd(opts, guidance.ModeRuling, "ruling [question...]", "Summarise the ruling on a question"),
		newStatsCmd(opts),
		newRefCmd(),
	)
	return root
}

func (o *rootOptions) client() *client.Client {
	return client.New(o.apiURL, client.WithTimeout(o.timeout))
}

func newSearchCmd(opts *rootOptions, mode guidance.Mode, use, short string) *cobra.Command {
	var share bool
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session := client.NewSession(opts.client(), mode)
			defer session.Wait()

			v, err := session.Submit(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				if v.Message != "" {
					return fmt.Errorf("%s", v.Message)
				}
				return err
			}

			out := cmd.OutOrStdout()
			if share && v.Dua != nil {
				text, err := session.Share(cmd.Context())
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(out, text)
				return err
			}
			if opts.asJSON {
				if v.Dua != nil {
					return printJSON(out, v.Dua)
				}
				return printJSON(out, v.Ruling)
			}
			if v.Dua != nil {
				printDua(out, v.Dua)
			} else {
				printRuling(out, v.Ruling)
			}
			return nil
		},
	}
	if mode == guidance.ModeDua {
		cmd.Flags().BoolVar(&share, "share", false, "print the share text and record a share")
	}
	return cmd
}

func newStatsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show usage counters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := opts.client().Stats(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if opts.asJSON {
				return printJSON(out, s)
			}
			fmt.Fprintf(out, "visitors:  %d\ngenerated: %d\nshared:    %d\n", s.UniqueVisitors, s.DuasGenerated, s.DuasShared)
			return nil
		},
	}
}

// ref resolves locally; it needs no server.
func newRefCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ref [citation...]",
		Short: "Resolve a Quran or hadith citation to a link",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res := reference.Resolve(strings.Join(args, " "))
			out := cmd.OutOrStdout()
			if res.Link == nil {
				fmt.Fprintln(out, "no link for this citation")
				return nil
			}
			fmt.Fprintf(out, "%s\n%s\n", res.Link.Label, res.Link.URL)
			if res.Grade != "" {
				fmt.Fprintf(out, "grade: %s (%s)\n", res.Grade, res.GradeTier)
			}
			return nil
		},
	}
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

func printDua(w io.Writer, d *guidance.DuaContent) {
	fmt.Fprintf(w, "%s\n\n%s\n\n%s\n\n%s\n\nSource: %s\n", d.Title, d.Arabic, d.Transliteration, d.Translation, d.Source)
	if d.Narrator != nil {
		fmt.Fprintf(w, "Narrated by: %s\n", *d.Narrator)
	}
	if d.Context != nil {
		fmt.Fprintf(w, "Context: %s\n", *d.Context)
	}
	if link := reference.LinkFor(d.Source); link != nil {
		fmt.Fprintf(w, "%s: %s\n", link.Label, link.URL)
	}
}

func printRuling(w io.Writer, r *guidance.RulingContent) {
	fmt.Fprintf(w, "%s\n\n%s\n", r.Title, r.Summary)
	if len(r.Evidences) > 0 {
		fmt.Fprintln(w, "\nEvidence:")
		for _, e := range r.Evidences {
			fmt.Fprintf(w, "  - %s (%s", e.Translation, e.Source)
			if e.Grade != "" {
				fmt.Fprintf(w, ", %s", e.Grade)
			}
			fmt.Fprintln(w, ")")
			if link := reference.LinkFor(e.Source); link != nil {
				fmt.Fprintf(w, "    %s\n", link.URL)
			}
		}
	}
	if len(r.ScholarOpinions) > 0 {
		fmt.Fprintln(w, "\nScholars:")
		for _, o := range r.ScholarOpinions {
			fmt.Fprintf(w, "  - %s: %s\n", o.Scholar, o.Opinion)
		}
	}
	if r.Notes != "" {
		fmt.Fprintf(w, "\nNotes: %s\n", r.Notes)
	}
}
