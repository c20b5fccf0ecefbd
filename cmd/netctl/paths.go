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
	"time"

	"github.com/spf13/cobra"

	"github.com/cultivatehq/cultivate/backend/internal/service"
	"github.com/cultivatehq/cultivate/backend/internal/snapshotfile"
)

type pathsOptions struct {
	file     string
	targets  string
	format   string
	watch    bool
	debounce time.Duration
}

func pathsCmd(flags *globalFlags) *cobra.Command {
	opts := pathsOptions{}

	cmd := &cobra.Command{
		Use:   "paths --file snapshot.yaml",
		Short: "Compute connection paths from a snapshot file",
		Long: `Reads {sourceContactId, targetContactIds, nodes, edges, contactDetails}
from a JSON or YAML file and prints the best path to every reachable target.
With --watch the paths are recomputed whenever the file changes.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.file == "" {
				return fmt.Errorf("--file is required")
			}
			switch opts.format {
			case "json", "table":
			default:
				return fmt.Errorf("unknown --output %q: want json or table", opts.format)
			}

			logger := flags.logger(cmd)
			svc := service.NewNetworkService(nil, nil, service.Options{Logger: logger})
			out := cmd.OutOrStdout()

			if !opts.watch {
				req, err := snapshotfile.Load(opts.file)
				if err != nil {
					return err
				}
				return computeAndPrint(cmd.Context(), svc, req, opts, out)
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			w, err := snapshotfile.NewWatcher(opts.file, opts.debounce, logger)
			if err != nil {
				return err
			}
			logger.Info("watching snapshot file", "path", opts.file)
			return w.Run(ctx, func(req service.PathRequest, err error) {
				if err != nil {
					logger.Error("snapshot reload failed", "error", err)
					return
				}
				if err := computeAndPrint(ctx, svc, req, opts, out); err != nil {
					logger.Error("path calculation failed", "error", err)
				}
			})
		},
	}

	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "Snapshot file (.json, .yaml or .yml)")
	cmd.Flags().StringVar(&opts.targets, "targets", "", "Comma separated target ids, overriding the file")
	cmd.Flags().StringVarP(&opts.format, "output", "o", "json", "Output format (json, table)")
	cmd.Flags().BoolVarP(&opts.watch, "watch", "w", false, "Recompute whenever the file changes")
	cmd.Flags().DurationVar(&opts.debounce, "debounce", 300*time.Millisecond, "Delay used to coalesce file change events")

	return cmd
}

func computeAndPrint(ctx context.Context, svc *service.NetworkService, req service.PathRequest, opts pathsOptions, out io.Writer) error {
	if ids := service.SplitIDs(opts.targets); len(ids) > 0 {
		req.TargetContactIDs = ids
	}
	res, err := svc.CalculatePaths(ctx, req)
	if err != nil {
		return err
	}

	if opts.format == "table" {
		return printTable(out, res)
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

func printTable(out io.Writer, res service.PathResult) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TARGET\tHOPS\tCONFIDENCE\tVIA")
	for _, p := range res.Paths {
		via := make([]string, 0, len(p.PathSteps))
		for _, s := range p.PathSteps[:len(p.PathSteps)-1] {
			via = append(via, s.ContactName)
		}
		target := p.TargetContactName
		if target == "" {
			target = p.TargetContactID
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\t%s\n", target, p.PathLength, p.Confidence, strings.Join(via, " > "))
	}
	return tw.Flush()
}
