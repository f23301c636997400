package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"musicpin/internal/core"
	"musicpin/internal/i18n"
	"musicpin/pkg/text"
)

func newSearchCmd() *cobra.Command {
	var song, artist, platform, source string
	var page int

	cmd := &cobra.Command{
		Use:   "search [free text]",
		Short: "Resolve a song to a playable track",
		Example: `  musicpin search --song 晴天 --artist 周杰伦
  musicpin search "海阔天空 - Beyond"
  musicpin search --platform kg --source lz --page 2 稻香`,
		RunE: func(cmd *cobra.Command, args []string) error {
			q := core.Query{Song: song, Artist: artist}
			if q.Keyword() == "" {
				q = text.NewParser().ParseQuery(strings.Join(args, " "))
			}

			return withStrategy(cmd, func(ctx context.Context, strategy *core.Strategy, l *i18n.Localizer) error {
				if platform != "" || source != "" {
					iface, err := core.ParseInterface(platform + ":" + source)
					if err != nil {
						return err
					}
					matches, err := strategy.SearchInterface(ctx, iface, q.Keyword(), page)
					if err != nil {
						return err
					}
					return writeJSON(cmd.OutOrStdout(), matches)
				}

				res, err := strategy.ResolveSearch(ctx, q)
				if err != nil {
					return err
				}

				label := l.InterfaceLabel(string(res.Interface.Platform), string(res.Interface.Provider))
				track := l.T("format.track", res.Track.Title, res.Track.Artist)
				if res.Relevant {
					fmt.Fprintln(cmd.ErrOrStderr(), l.T("status.resolved", track, label))
				} else {
					fmt.Fprintln(cmd.ErrOrStderr(), l.T("status.fallback", track, label))
				}
				return writeJSON(cmd.OutOrStdout(), res)
			})
		},
	}

	cmd.Flags().StringVar(&song, "song", "", "Song title")
	cmd.Flags().StringVar(&artist, "artist", "", "Artist name")
	cmd.Flags().StringVar(&platform, "platform", "", "Search only this platform (with --source)")
	cmd.Flags().StringVar(&source, "source", "", "Search only this provider (with --platform)")
	cmd.Flags().IntVar(&page, "page", 1, "Result page for single-interface search")

	return cmd
}

func newDetailCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "detail <key>",
		Short: "Re-resolve a continuation key to a playable track",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStrategy(cmd, func(ctx context.Context, strategy *core.Strategy, _ *i18n.Localizer) error {
				track, err := strategy.ResolveDetail(ctx, args[0])
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), track)
			})
		},
	}
}

func newLyricsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lyrics <key>",
		Short: "Print the lyrics of a continuation key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStrategy(cmd, func(ctx context.Context, strategy *core.Strategy, l *i18n.Localizer) error {
				lyrics, err := strategy.ResolveLyrics(ctx, args[0])
				if err != nil {
					return err
				}
				if lyrics == "" {
					fmt.Fprintln(cmd.ErrOrStderr(), l.T("status.no_lyrics"))
					return nil
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), lyrics)
				return err
			})
		},
	}
}

func newInterfacesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "interfaces",
		Short: "List the enablement table in probe order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withStrategy(cmd, func(_ context.Context, strategy *core.Strategy, l *i18n.Localizer) error {
				return writeInterfaces(cmd.OutOrStdout(), strategy.Table(), l)
			})
		},
	}
}

// withStrategy runs fn with a strategy and a context canceled on SIGINT/SIGTERM.
func withStrategy(cmd *cobra.Command, fn func(ctx context.Context, strategy *core.Strategy, l *i18n.Localizer) error) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	defer func() { _ = logger.Sync() }()

	strategy, err := newStrategy(nil, nil)
	if err != nil {
		return err
	}
	return fn(ctx, strategy, i18n.NewLocalizer(config.App.Language))
}

func writeInterfaces(w io.Writer, table *core.EnablementTable, l *i18n.Localizer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, row := range table.Rows() {
		status := l.T("status.disabled")
		if row.Enabled {
			status = l.T("status.enabled")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n",
			row.Interface, l.InterfaceLabel(string(row.Platform), string(row.Provider)), status)
	}
	return tw.Flush()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
