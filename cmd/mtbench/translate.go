package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"mtbench/internal/common/fsutil"
	"mtbench/internal/translator"
)

type translateFlags struct {
	model     string
	task      string
	quantize  string
	input     string
	offline   bool
	withIndex bool
}

func newTranslateCmd(a *app) *cobra.Command {
	var tf translateFlags
	cmd := &cobra.Command{
		Use:   "translate",
		Short: "Translate sentences read from a file or stdin, one per line",
		Long: "Translate prepares one translator and writes one translation per input line.\n" +
			"With --offline the inputs are length-sorted and generated in chunks of 32; the\n" +
			"output then follows the sorted order. Use --with-index to get the input line\n" +
			"number in front of every translation.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if tf.model == "" {
				tf.model = a.cfg.DefaultModel
			}
			if tf.task == "" {
				tf.task = a.cfg.DefaultTask
			}
			if tf.quantize == "" {
				tf.quantize = a.cfg.DefaultQuantize
			}
			if tf.model == "" || tf.task == "" {
				return errors.New("--model and --task are required")
			}
			return a.translate(cmd, tf)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&tf.model, "model", "m", "", "Pretrained model id")
	f.StringVarP(&tf.task, "task", "t", "", "Task name, e.g. wmt16-en-de")
	f.StringVarP(&tf.quantize, "quantize", "q", "", "Precision: fp16, bf16, bb8, bb4 (anything else = full)")
	f.StringVarP(&tf.input, "input", "i", "-", "Input file, '-' for stdin")
	f.BoolVar(&tf.offline, "offline", false, "Length-sorted chunked generation (output in sorted order)")
	f.BoolVar(&tf.withIndex, "with-index", false, "Prefix each line with its input line number and a tab")
	return cmd
}

func (a *app) translate(cmd *cobra.Command, tf translateFlags) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	// Fail fast on unknown or unsupported combinations before reading input.
	if _, _, err := a.catalog.Resolve(tf.model, tf.task); err != nil {
		return err
	}
	b := newBackend(a)
	if b == nil {
		return errors.New("no model backend configured (set --backend-url or backend_url)")
	}
	lines, err := fsutil.ReadLines(tf.input, cmd.InOrStdin())
	if err != nil {
		return err
	}

	// Preparation status lines go to stderr so stdout only carries translations.
	tr, err := translator.New(ctx, b, translator.Options{
		ModelID:  tf.model,
		Task:     tf.task,
		Quantize: tf.quantize,
		Catalog:  a.catalog,
		Out:      cmd.ErrOrStderr(),
		Logger:   &a.log,
	})
	if err != nil {
		return err
	}

	start := time.Now()
	var s *translator.Stream
	if tf.offline {
		s = tr.PredictOffline(ctx, lines)
	} else {
		s = tr.Predict(ctx, lines)
	}
	out := bufio.NewWriter(cmd.OutOrStdout())
	defer out.Flush()
	n := 0
	for r, err := range s.All() {
		if err != nil {
			return err
		}
		if tf.withIndex {
			fmt.Fprintf(out, "%d\t%s\n", r.Index, r.Text)
		} else {
			fmt.Fprintln(out, r.Text)
		}
		n++
	}
	a.log.Info().Str("model", tf.model).Str("task", tf.task).Str("precision", string(tr.Precision())).
		Bool("offline", tf.offline).Int("sentences", n).Dur("dur", time.Since(start)).Msg("translation finished")
	return nil
}
