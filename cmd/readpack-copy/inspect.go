package main

import (
	"fmt"
	"io"
	"time"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/arloliu/readpack/container"
)

type batchSummary struct {
	Index int `json:"index"`
	Rows  int `json:"rows"`
}

type inspectReport struct {
	Path              string               `json:"path"`
	Creator           string               `json:"creator"`
	CreatedAt         time.Time            `json:"created_at"`
	RowInfoVersion    uint16               `json:"row_info_version"`
	ByteOrder         string               `json:"byte_order"`
	SignalCompression string               `json:"signal_compression"`
	RowCompression    string               `json:"row_compression"`
	Reads             uint64               `json:"reads"`
	Batches           []batchSummary       `json:"batches"`
	PoreTypes         []string             `json:"pore_types"`
	RunInfos          []*container.RunInfo `json:"run_infos"`
}

func newInspectCmd() *cobra.Command {
	var asJSON bool
	var configPath string

	cmd := &cobra.Command{
		Use:   "inspect <file>",
		Short: "Describe the contents of a readpack container",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, _, err := setup(configPath); err != nil {
				return err
			}

			report, err := inspectFile(args[0])
			if err != nil {
				return err
			}

			if asJSON {
				data, err := json.MarshalIndent(report, "", "  ")
				if err != nil {
					return fmt.Errorf("encode report: %w", err)
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))

				return err
			}

			return printReport(cmd.OutOrStdout(), report)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the report as JSON")
	cmd.Flags().StringVar(&configPath, "config", "", "Path to a YAML or JSON config file")

	return cmd
}

func inspectFile(path string) (report *inspectReport, err error) {
	r, err := container.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := r.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	header := r.Header()
	byteOrder := "little-endian"
	if header.Flag.IsBigEndian() {
		byteOrder = "big-endian"
	}

	report = &inspectReport{
		Path:              path,
		Creator:           r.Creator(),
		CreatedAt:         header.CreatedAtAsTime().UTC(),
		RowInfoVersion:    header.RowInfoVersion,
		ByteOrder:         byteOrder,
		SignalCompression: header.Flag.GetSignalCompression().String(),
		RowCompression:    header.Flag.GetRowCompression().String(),
		Reads:             r.ReadCount(),
		Batches:           make([]batchSummary, 0, r.BatchCount()),
		PoreTypes:         r.PoreTypes(),
		RunInfos:          make([]*container.RunInfo, 0, r.RunInfoCount()),
	}

	for i := range r.BatchCount() {
		rows, err := r.BatchRowCount(i)
		if err != nil {
			return nil, err
		}
		report.Batches = append(report.Batches, batchSummary{Index: i, Rows: rows})
	}

	for i := range r.RunInfoCount() {
		ri, err := r.RunInfo(i)
		if err != nil {
			return nil, err
		}
		report.RunInfos = append(report.RunInfos, ri)
	}

	return report, nil
}

func printReport(w io.Writer, r *inspectReport) error {
	var err error
	printf := func(format string, args ...any) {
		if err == nil {
			_, err = fmt.Fprintf(w, format, args...)
		}
	}

	printf("File:               %s\n", r.Path)
	printf("Creator:            %s\n", r.Creator)
	printf("Created:            %s\n", r.CreatedAt.Format(time.RFC3339))
	printf("Row info version:   %d\n", r.RowInfoVersion)
	printf("Byte order:         %s\n", r.ByteOrder)
	printf("Signal compression: %s\n", r.SignalCompression)
	printf("Row compression:    %s\n", r.RowCompression)
	printf("Reads:              %d\n", r.Reads)
	printf("Batches:            %d\n", len(r.Batches))
	for _, b := range r.Batches {
		printf("  [%d] %d reads\n", b.Index, b.Rows)
	}
	printf("Pore types:         %d\n", len(r.PoreTypes))
	for i, p := range r.PoreTypes {
		printf("  [%d] %s\n", i, p)
	}
	printf("Run infos:          %d\n", len(r.RunInfos))
	for i, ri := range r.RunInfos {
		printf("  [%d] %s (%s, %d Hz)\n", i, ri.AcquisitionID, ri.FlowCellID, ri.SampleRate)
	}

	return err
}
