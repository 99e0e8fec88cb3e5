// If you are AI: This file implements `animage probe`, which fetches one image and reports
// its format, size, loop count and per-frame durations as the scheduler would play them.

package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"animage/internal/core/codec"
	"animage/internal/core/format"
	"animage/internal/core/session"
	"animage/internal/svc/fetch"
)

// errUnknownFormat is returned when the bytes match no known signature.
var errUnknownFormat = errors.New("unrecognised image format")

// probeReport summarises one image.
type probeReport struct {
	Locator   string `json:"locator"`
	Format    string `json:"format"`
	Bytes     int    `json:"bytes"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Frames    int    `json:"frames"`
	Loops     int    `json:"loops"` // 0 means forever
	Durations []int  `json:"durations_ms"`
	TotalMS   int    `json:"pass_ms"`
}

// probeImage decodes every frame of one pass, collecting clamped durations.
func probeImage(ctx context.Context, f *fetch.Fetcher, engines *codec.Registry, locator string) (*probeReport, error) {
	data, err := f.Fetch(ctx, locator)
	if err != nil {
		return nil, err
	}

	tag, ok := format.DetectBytes(data)
	if !ok {
		return nil, errUnknownFormat
	}
	engine, err := engines.Lookup(tag)
	if err != nil {
		return nil, err
	}

	sess, err := session.New(tag, data, engine)
	if err != nil {
		return nil, err
	}
	defer sess.Destroy()

	report := &probeReport{
		Locator:   locator,
		Format:    tag.String(),
		Bytes:     sess.EncodedSize(),
		Width:     sess.Width(),
		Height:    sess.Height(),
		Frames:    sess.FrameCount(),
		Loops:     max(sess.LoopCount(), 0),
		Durations: make([]int, 0, sess.FrameCount()),
	}
	for i := 0; i < sess.FrameCount(); i++ {
		if err := sess.DecodeNextFrame(); err != nil {
			return nil, err
		}
		report.Durations = append(report.Durations, sess.FrameDuration())
		report.TotalMS += sess.FrameDuration()
	}
	return report, nil
}

func newProbeCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "probe <locator>",
		Short: "Inspect an animated image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			// probe reads from the caller's own filesystem.
			f := fetch.New(fetch.Options{
				Timeout:    time.Duration(cfg.Fetch.Timeout),
				MaxBytes:   cfg.Fetch.MaxBytes,
				UserAgent:  cfg.Fetch.UserAgent,
				AllowLocal: true,
			})

			report, err := probeImage(cmd.Context(), f, codec.DefaultRegistry(), args[0])
			if err != nil {
				return fmt.Errorf("probe %s: %w", args[0], err)
			}
			if asJSON {
				return writeJSON(cmd, report)
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderProbe(report))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON instead of a table")
	return cmd
}

func renderProbe(r *probeReport) string {
	loops := strconv.Itoa(r.Loops)
	if r.Loops == 0 {
		loops = "forever"
	}
	summary := renderTable(
		[]string{"Format", "Size", "Bytes", "Frames", "Loops", "Pass"},
		[][]string{{
			r.Format,
			fmt.Sprintf("%dx%d", r.Width, r.Height),
			strconv.Itoa(r.Bytes),
			strconv.Itoa(r.Frames),
			loops,
			fmt.Sprintf("%d ms", r.TotalMS),
		}},
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight},
	)

	rows := make([][]string, 0, len(r.Durations))
	for i, d := range r.Durations {
		rows = append(rows, []string{strconv.Itoa(i), strconv.Itoa(d)})
	}
	frames := renderTable([]string{"Frame", "Duration (ms)"}, rows, []columnAlignment{alignRight, alignRight})

	return strings.Join([]string{summary, frames}, "\n")
}
