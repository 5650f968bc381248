package letter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/hireflowhq/hireflow/internal/application/port"
	"github.com/hireflowhq/hireflow/internal/domain/entity"
)

// Completer receives the rendered letter path once generation finishes. The
// offer service satisfies this and advances the offer to LETTER_GENERATED.
type Completer interface {
	MarkLetterGenerated(ctx context.Context, offerID, letterPath string) error
}

// ExcelGenerator implements port.LetterGenerator by rendering an offer letter
// workbook and reporting completion back through the Completer
type ExcelGenerator struct {
	offerRepo port.OfferRepository
	completer Completer
	outputDir string
	company   string
	logger    *zap.Logger
}

// NewExcelGenerator creates a new Excel letter generator
func NewExcelGenerator(offerRepo port.OfferRepository, completer Completer, outputDir, company string, logger *zap.Logger) *ExcelGenerator {
	return &ExcelGenerator{
		offerRepo: offerRepo,
		completer: completer,
		outputDir: outputDir,
		company:   company,
		logger:    logger,
	}
}

// SetCompleter wires the completion callback after construction. The generator
// and the offer service reference each other, so one side is attached late.
func (g *ExcelGenerator) SetCompleter(c Completer) {
	g.completer = c
}

// RenderAndDispatch renders the letter workbook for an offer and marks the
// offer letter-generated on success
func (g *ExcelGenerator) RenderAndDispatch(ctx context.Context, offerID string) error {
	offer, err := g.offerRepo.GetByOfferID(ctx, offerID)
	if err != nil {
		return fmt.Errorf("get offer: %w", err)
	}
	if offer == nil {
		return fmt.Errorf("offer %s: %w", offerID, entity.ErrNotFound)
	}

	if err := os.MkdirAll(g.outputDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	outputPath := filepath.Join(g.outputDir, fmt.Sprintf("offer-%s.xlsx", offer.OfferID))
	if err := g.render(offer, outputPath); err != nil {
		g.logger.Error("Failed to render offer letter",
			zap.String("offer_id", offerID), zap.Error(err))
		return err
	}

	if g.completer == nil {
		return fmt.Errorf("letter completer not wired")
	}
	if err := g.completer.MarkLetterGenerated(ctx, offerID, outputPath); err != nil {
		return fmt.Errorf("mark letter generated: %w", err)
	}

	g.logger.Info("Offer letter rendered",
		zap.String("offer_id", offerID), zap.String("output_path", outputPath))
	return nil
}

func (g *ExcelGenerator) render(offer *entity.Offer, outputPath string) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)

	g.setCell(f, sheet, "A1", g.company)
	g.setCell(f, sheet, "A2", "Offer of Employment")
	g.setCell(f, sheet, "A4", "Candidate")
	g.setCell(f, sheet, "B4", offer.CandidateID)
	g.setCell(f, sheet, "A5", "Grade")
	g.setCell(f, sheet, "B5", offer.Grade)
	g.setCell(f, sheet, "A6", "Country")
	g.setCell(f, sheet, "B6", offer.Country)

	g.setCell(f, sheet, "A8", "Compensation")
	g.setCell(f, sheet, "A9", "Base")
	g.setCell(f, sheet, "B9", fmt.Sprintf("%s %s", offer.Base.StringFixed(2), offer.Currency))
	g.setCell(f, sheet, "A10", "Variable Pay")
	g.setCell(f, sheet, "B10", fmt.Sprintf("%s %s", offer.VariablePay.StringFixed(2), offer.Currency))

	row := 12
	if len(offer.Allowances) > 0 {
		g.setCell(f, sheet, fmt.Sprintf("A%d", row), "Allowances")
		row++
		for name, value := range offer.Allowances {
			g.setCell(f, sheet, fmt.Sprintf("A%d", row), name)
			g.setCell(f, sheet, fmt.Sprintf("B%d", row), fmt.Sprintf("%v", value))
			row++
		}
		row++
	}
	if len(offer.Benefits) > 0 {
		g.setCell(f, sheet, fmt.Sprintf("A%d", row), "Benefits")
		row++
		for name, value := range offer.Benefits {
			g.setCell(f, sheet, fmt.Sprintf("A%d", row), name)
			g.setCell(f, sheet, fmt.Sprintf("B%d", row), fmt.Sprintf("%v", value))
			row++
		}
		row++
	}

	g.setCell(f, sheet, fmt.Sprintf("A%d", row), "Valid Until")
	g.setCell(f, sheet, fmt.Sprintf("B%d", row), offer.ExpiryDate.Format("2006-01-02"))

	if err := f.SaveAs(outputPath); err != nil {
		return fmt.Errorf("failed to save letter workbook: %w", err)
	}
	return nil
}

func (g *ExcelGenerator) setCell(f *excelize.File, sheet, cell string, value interface{}) {
	if err := f.SetCellValue(sheet, cell, value); err != nil {
		g.logger.Warn("Failed to set cell value",
			zap.String("sheet", sheet), zap.String("cell", cell), zap.Error(err))
	}
}

// Verify interface compliance
var _ port.LetterGenerator = (*ExcelGenerator)(nil)
