package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JakeFAU/competitor-radar/internal/delivery"
	"github.com/JakeFAU/competitor-radar/internal/pipeline"
)

type scanOptions struct {
	subject     string
	competitors []string
	out         string
	requester   delivery.Requester
}

func newScanCmd() *cobra.Command {
	var opts scanOptions
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Runs one competitive scan and prints the report as JSON",
		Example: `  radar scan --subject https://mystore.com \
    --competitor https://rival-one.com --competitor https://rival-two.com`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runScan(cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.subject, "subject", "", "your site URL")
	cmd.Flags().StringArrayVar(&opts.competitors, "competitor", nil, "competitor site URL (repeat up to 5 times)")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "write the report to this file instead of stdout")
	cmd.Flags().StringVar(&opts.requester.Name, "name", "", "requester name attached to the hand-off")
	cmd.Flags().StringVar(&opts.requester.Email, "email", "", "requester email attached to the hand-off")
	cmd.Flags().StringVar(&opts.requester.Company, "company", "", "requester company attached to the hand-off")
	_ = cmd.MarkFlagRequired("subject")
	return cmd
}

func runScan(cmd *cobra.Command, opts scanOptions) error {
	appInstance, err := resolveApp(cmd.Context())
	if err != nil {
		return err
	}
	logger := appInstance.GetLogger()

	report, err := appInstance.GetPipeline().Run(cmd.Context(), pipeline.Request{
		SubjectURL:     opts.subject,
		CompetitorURLs: opts.competitors,
	})
	if err != nil {
		return fmt.Errorf("scan: %w", err)
	}

	receipt, err := appInstance.GetDeliverer().Deliver(cmd.Context(), *report, opts.requester)
	if err != nil {
		logger.Warn("report hand-off incomplete", zap.String("report_id", report.ID), zap.Error(err))
	}

	var w io.Writer = cmd.OutOrStdout()
	if opts.out != "" {
		f, err := os.Create(opts.out)
		if err != nil {
			return fmt.Errorf("create %s: %w", opts.out, err)
		}
		defer func() {
			if cerr := f.Close(); cerr != nil {
				logger.Warn("close report file", zap.Error(cerr))
			}
		}()
		w = f
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	logger.Info("scan finished",
		zap.String("report_id", report.ID),
		zap.Int("competitors", len(report.Competitors)),
		zap.String("insight_source", string(report.InsightSource)),
		zap.Int64("execution_ms", report.ExecutionTime),
		zap.String("archive_uri", receipt.ArchiveURI),
	)
	return nil
}
