package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/agenthands/flowalign/internal/core/model"
)

func runAlign(cmd *cobra.Command, args []string) error {
	a, cleanup, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer cleanup()

	report, err := a.Engine.RunAlignment(cmd.Context(), args[0], args[1], !dryRun)
	if err != nil {
		return err
	}
	if jsonOutput {
		return writeJSON(cmd.OutOrStdout(), report)
	}
	return printReport(cmd.OutOrStdout(), report)
}

func runBuild(cmd *cobra.Command, args []string) error {
	a, cleanup, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer cleanup()

	out := cmd.OutOrStdout()
	if forceBuild {
		graph, err := a.Engine.RebuildCanonical(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "built %s: %d flows, %d nodes, %d edges\n",
			args[0], graph.FlowCount, len(graph.Nodes), len(graph.Edges))
		return nil
	}

	nodes, built, err := a.Engine.EnsureCanonical(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	state := "cached"
	if built {
		state = "built"
	}
	fmt.Fprintf(out, "%s %s: %d nodes\n", state, args[0], len(nodes))
	return nil
}

func runExtract(cmd *cobra.Command, args []string) error {
	a, cleanup, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer cleanup()

	if a.Extractor == nil {
		return fmt.Errorf("extract needs an LLM provider, set llm.provider or LLM_PROVIDER")
	}

	collectionID, path := args[0], args[1]
	text, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read transcript '%s': %w", path, err)
	}

	transcriptID := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	flow, err := a.Extractor.ExtractFlow(cmd.Context(), transcriptID, string(text))
	if err != nil {
		return err
	}
	flow, err = a.Engine.AddTranscriptFlow(cmd.Context(), collectionID, flow)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "stored flow %s for transcript %s: %d nodes, %d connections\n",
		flow.ID, flow.TranscriptID, len(flow.Nodes), len(flow.Connections))
	return nil
}

func runPhases(cmd *cobra.Command, args []string) error {
	a, cleanup, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer cleanup()

	phases, err := a.Engine.Phases(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if len(phases) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no phases")
		return nil
	}
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "PHASE\tNAME\tSTEPS\tSUPPORT")
	for _, p := range phases {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\n", p.ID, p.Name, len(p.NodeIDs), p.Support)
	}
	return w.Flush()
}

func printReport(out io.Writer, r *model.AlignmentReport) error {
	mode := "persisted"
	if r.DryRun {
		mode = "dry run"
	}
	fmt.Fprintf(out, "%s / %s (%s): %d prompt nodes, %d canonical nodes, %d rows stored\n",
		r.ProjectID, r.CollectionID, mode, r.PromptNodeCount, r.CanonicalNodeCount, r.PersistedCount)
	fmt.Fprintf(out, "covered %d, overconstrained %d, uncovered %d\n",
		r.Counts.Covered, r.Counts.Overconstrained, r.Counts.Uncovered)

	if len(r.Items) == 0 {
		return nil
	}
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "STATUS\tPROMPT\tCANONICAL\tCONFIDENCE")
	for _, it := range r.Items {
		canonical := it.CanonicalLabel
		if canonical == "" {
			canonical = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2f\n", it.Status, it.PromptLabel, canonical, it.Confidence)
	}
	return w.Flush()
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
