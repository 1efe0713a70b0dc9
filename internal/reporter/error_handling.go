package reporter

import (
	"fmt"
	"io"
	"os"

	"finance-cycle-engine/internal/engine"
	"finance-cycle-engine/pkg/errors"
	"finance-cycle-engine/pkg/logger"
)

// SafeReportGenerator wraps ReportGenerator with logging and a console
// fallback when a structured format fails to render.
type SafeReportGenerator struct {
	*ReportGenerator
	logger logger.Logger
}

// NewSafeReportGenerator creates a new safe report generator
func NewSafeReportGenerator(config *ReportConfig, log logger.Logger) (*SafeReportGenerator, error) {
	if log == nil {
		log = logger.GetGlobalLogger()
	}

	generator, err := NewReportGenerator(config)
	if err != nil {
		return nil, errors.ConfigurationError(
			errors.CodeInvalidConfig,
			"report_config",
			config,
			err,
		).WithSuggestion("Check the report configuration values")
	}

	return &SafeReportGenerator{
		ReportGenerator: generator,
		logger:          log.WithComponent("reporter"),
	}, nil
}

// GenerateReportSafely generates a report with input validation and a
// console-format fallback.
func (srg *SafeReportGenerator) GenerateReportSafely(result *engine.Result, writer io.Writer) error {
	srg.logger.WithFields(logger.Fields{
		"format": srg.config.Format,
		"output": writerDescription(writer),
	}).Info("Starting report generation")

	if result == nil {
		err := errors.ValidationError(errors.CodeMissingField, "result", nil, nil).
			WithSuggestion("Provide a valid evaluation result")
		srg.logger.WithError(err).Error("Report generation failed: input validation")
		return err
	}
	if writer == nil {
		err := errors.ValidationError(errors.CodeMissingField, "writer", nil, nil).
			WithSuggestion("Provide a valid output writer")
		srg.logger.WithError(err).Error("Report generation failed: input validation")
		return err
	}

	if err := srg.generateWithFallback(result, writer); err != nil {
		srg.logger.WithError(err).Error("Report generation failed")
		return err
	}

	srg.logger.Info("Report generation completed successfully")
	return nil
}

// generateWithFallback falls back to console rendering when a structured
// format fails; console output has no serialization failure modes.
func (srg *SafeReportGenerator) generateWithFallback(result *engine.Result, writer io.Writer) error {
	err := srg.GenerateReport(result, writer)
	if err == nil {
		return nil
	}

	if srg.config.Format == FormatConsole {
		return srg.wrapGenerationError(err)
	}

	srg.logger.WithError(err).Warn("Primary report generation failed, attempting console fallback")

	fallbackConfig := *srg.config
	fallbackConfig.Format = FormatConsole
	fallbackGenerator, fbErr := NewReportGenerator(&fallbackConfig)
	if fbErr != nil {
		return srg.wrapGenerationError(err)
	}

	fmt.Fprintf(writer, "NOTE: Report generated in fallback format due to error with requested format\n")
	fmt.Fprintf(writer, "Original error: %v\n\n", err)

	if fbErr := fallbackGenerator.GenerateReport(result, writer); fbErr != nil {
		return errors.InternalError(
			errors.CodeUnexpectedError,
			"report_fallback",
			fmt.Errorf("both primary and fallback generation failed: primary=%v, fallback=%v", err, fbErr),
		)
	}

	srg.logger.Info("Report generated successfully using format fallback")
	return nil
}

// wrapGenerationError wraps generation errors with context
func (srg *SafeReportGenerator) wrapGenerationError(err error) error {
	if engineErr, ok := errors.AsEngineError(err); ok {
		return engineErr
	}

	return errors.InternalError(
		errors.CodeUnexpectedError,
		"report_generation",
		err,
	).WithSuggestion("Check the output destination and report format settings")
}

func writerDescription(writer io.Writer) string {
	switch w := writer.(type) {
	case *os.File:
		if w.Name() != "" {
			return fmt.Sprintf("file:%s", w.Name())
		}
		return "file:unnamed"
	default:
		return fmt.Sprintf("writer:%T", writer)
	}
}
