package http

import (
	"fmt"
	"net/http"

	"github.com/xuri/excelize/v2"

	"finanzy/internal/core"
	"finanzy/internal/ledger"
	"finanzy/internal/log"
)

const exportSheet = "Transações"

var exportHeader = []any{"Data", "Título", "Valor", "Tipo", "Categoria", "Período"}

// handleExport downloads the filtered history, newest first, as a workbook.
// Pagination and privacy mode do not apply.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	if err := s.ensureLoaded(r.Context()); err != nil {
		BadGatewayError("Não foi possível carregar as transações").Write(w)
		return
	}
	q := s.listQuery(r)
	items := ledger.SortByDateDesc(ledger.Filter(s.store.Snapshot(), q.Criteria))

	f, err := buildWorkbook(items)
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Failed to build export",
			log.FieldError, err,
			log.FieldOperation, log.OpExport)
		InternalServerError("Erro ao gerar a planilha").Write(w)
		return
	}
	defer func() { _ = f.Close() }()

	filename := fmt.Sprintf("finanzy-%s.xlsx", s.store.Today())
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	if err := f.Write(w); err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Failed to write export",
			log.FieldError, err,
			log.FieldOperation, log.OpExport)
		return
	}
	log.FromContext(r.Context()).InfoContext(r.Context(), "Transactions exported", log.FieldCount, len(items))
}

// buildWorkbook lays out one row per transaction followed by the totals of
// the exported rows.
func buildWorkbook(items []core.Transaction) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("header style: %w", err)
	}
	brl := `"R$" #,##0.00`
	money, err := f.NewStyle(&excelize.Style{CustomNumFmt: &brl})
	if err != nil {
		return nil, fmt.Errorf("money style: %w", err)
	}

	if err := f.SetSheetRow(exportSheet, "A1", &exportHeader); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	if err := f.SetRowStyle(exportSheet, 1, 1, bold); err != nil {
		return nil, fmt.Errorf("style header: %w", err)
	}

	for i, tx := range items {
		row := []any{
			tx.Date.String(),
			tx.Title,
			tx.Amount.Decimal().InexactFloat64(),
			string(tx.Type),
			tx.Category,
			string(tx.Period),
		}
		if err := f.SetSheetRow(exportSheet, fmt.Sprintf("A%d", i+2), &row); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	sum := ledger.Summarize(items)
	totalsRow := len(items) + 3
	totals := [][]any{
		{"Entradas", core.Money{Cents: sum.TotalIncome}.Decimal().InexactFloat64()},
		{"Saídas", core.Money{Cents: sum.TotalExpense}.Decimal().InexactFloat64()},
		{"Saldo", core.Money{Cents: sum.AvailableMoney}.Decimal().InexactFloat64()},
	}
	for i, t := range totals {
		cell := fmt.Sprintf("B%d", totalsRow+i)
		if err := f.SetSheetRow(exportSheet, cell, &t); err != nil {
			return nil, fmt.Errorf("write totals: %w", err)
		}
	}

	last := totalsRow + len(totals) - 1
	if err := f.SetCellStyle(exportSheet, "C2", fmt.Sprintf("C%d", last), money); err != nil {
		return nil, fmt.Errorf("style amounts: %w", err)
	}
	if err := f.SetColWidth(exportSheet, "A", "A", 12); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(exportSheet, "B", "B", 40); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(exportSheet, "C", "F", 18); err != nil {
		return nil, err
	}
	return f, nil
}
