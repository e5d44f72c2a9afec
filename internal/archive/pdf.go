// Package archive сохраняет документы утвержденных месяцев.
package archive

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
	"work-time-bot/internal/models"
	"work-time-bot/internal/service"

	"github.com/jung-kurt/gofpdf"
	"github.com/sirupsen/logrus"
)

// DestinationLocal - документы пишутся в каталог ArchivePath
const DestinationLocal = "local"

// Шрифт с кириллицей: имена сотрудников и праздников на русском
const fontFamily = "DejaVu"

var (
	//go:embed fonts/DejaVuSansCondensed.ttf
	fontRegular []byte
	//go:embed fonts/DejaVuSansCondensed-Bold.ttf
	fontBold []byte
)

type PDFGenerator struct {
	logger *logrus.Logger
}

func NewPDFGenerator() *PDFGenerator {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	return &PDFGenerator{logger: logger}
}

// DocumentPath - путь документа сотрудника за месяц, один файл на месяц
func DocumentPath(basePath string, employeeID uint, year, month int) string {
	return filepath.Join(basePath, fmt.Sprintf("employee_%d", employeeID), fmt.Sprintf("%04d-%02d.pdf", year, month))
}

func (g *PDFGenerator) Generate(ctx context.Context, target service.ArchiveTarget, doc *service.ArchiveDocument) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if target.Destination != DestinationLocal {
		return "", fmt.Errorf("unsupported archive destination %q", target.Destination)
	}
	if target.Path == "" {
		return "", errors.New("archive path is empty")
	}
	if doc == nil || doc.Data == nil || doc.Data.Employee == nil || doc.Data.Statistics == nil {
		return "", errors.New("archive document is incomplete")
	}

	path := DocumentPath(target.Path, doc.Job.EmployeeID, doc.Job.Year, doc.Job.Month)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}

	// Повторная попытка перезаписывает документ целиком
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("failed to remove previous document: %w", err)
	}

	pdf := render(doc)
	if err := pdf.Error(); err != nil {
		return "", fmt.Errorf("failed to render pdf: %w", err)
	}
	if err := pdf.OutputFileAndClose(path); err != nil {
		return "", fmt.Errorf("failed to write pdf: %w", err)
	}

	g.logger.WithFields(logrus.Fields{
		"document_id": doc.DocumentID,
		"employee_id": doc.Job.EmployeeID,
		"path":        path,
	}).Info("Archive document written")
	return path, nil
}

func render(doc *service.ArchiveDocument) *gofpdf.Fpdf {
	data := doc.Data
	stats := data.Statistics
	hours := stats.Hours()

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddUTF8FontFromBytes(fontFamily, "", fontRegular)
	pdf.AddUTF8FontFromBytes(fontFamily, "B", fontBold)
	pdf.SetTitle(fmt.Sprintf("Timesheet %04d-%02d", doc.Job.Year, doc.Job.Month), true)
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont(fontFamily, "", 8)
		pdf.CellFormat(0, 10, fmt.Sprintf("Generated %s", time.Now().UTC().Format(models.DateLayout)), "", 0, "C", false, 0, "")
	})

	pdf.AddPage()

	pdf.SetFont(fontFamily, "B", 16)
	pdf.Cell(0, 10, fmt.Sprintf("Monthly timesheet %02d/%d", doc.Job.Month, doc.Job.Year))
	pdf.Ln(12)

	pdf.SetFont(fontFamily, "", 11)
	line := func(text string) {
		pdf.Cell(0, 7, text)
		pdf.Ln(6)
	}

	line(fmt.Sprintf("Employee: %s (ID %d)", data.Employee.FullName(), data.Employee.ID))
	line(fmt.Sprintf("Region: %s, weekly hours: %.2f", data.Employee.Region, data.Employee.WeeklyHours))
	if doc.Approver != nil {
		line(fmt.Sprintf("Approved by: %s on %s", doc.Approver.FullName(), doc.Job.ApprovedAt.Format("2006-01-02 15:04")))
	}
	line(fmt.Sprintf("Document: %s", doc.DocumentID))
	pdf.Ln(4)

	pdf.SetFont(fontFamily, "B", 12)
	pdf.Cell(0, 8, "Summary")
	pdf.Ln(8)
	pdf.SetFont(fontFamily, "", 11)
	line(fmt.Sprintf("Working days: %.1f (elapsed %.1f), holidays on weekdays: %d", stats.WorkingDaysMonth, stats.WorkingDaysUntilToday, stats.HolidayCount))
	line(fmt.Sprintf("Paid absence days: %.1f, unpaid absence days: %.1f", stats.PaidAbsenceDaysMonth, stats.UnpaidAbsenceDaysMonth))
	line(fmt.Sprintf("Target: %.2f h (adjusted %.2f h)", hours.MonthlyTarget, hours.AdjustedTarget))
	line(fmt.Sprintf("Worked: %.2f h, credited absences: %.2f h", hours.Worked, hours.PaidAbsence))
	line(fmt.Sprintf("Actual: %.2f h, overtime: %.2f h", hours.Actual, hours.Overtime))
	pdf.Ln(4)

	pdf.SetFont(fontFamily, "B", 12)
	pdf.Cell(0, 8, "Time entries")
	pdf.Ln(8)

	pdf.SetFont(fontFamily, "B", 10)
	widths := []float64{30, 25, 25, 25, 30, 35}
	for i, h := range []string{"Date", "Start", "End", "Break", "Worked", "Status"} {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont(fontFamily, "", 10)
	for _, e := range data.Entries {
		cells := []string{
			e.Date.Format("02.01.2006"),
			e.StartTime,
			e.EndTime,
			fmt.Sprintf("%d min", e.BreakMinutes),
			fmt.Sprintf("%.2f h", service.MinutesToHours(e.WorkMinutes)),
			e.Status,
		}
		for i, c := range cells {
			pdf.CellFormat(widths[i], 6, c, "1", 0, "C", false, 0, "")
		}
		pdf.Ln(-1)
	}

	if len(data.Absences) > 0 {
		pdf.Ln(4)
		pdf.SetFont(fontFamily, "B", 12)
		pdf.Cell(0, 8, "Absences")
		pdf.Ln(8)
		pdf.SetFont(fontFamily, "", 10)
		for _, a := range data.Absences {
			line(fmt.Sprintf("%s: %s - %s, %.1f days", a.Type.Label(), a.StartDate.Format("02.01.2006"), a.EndDate.Format("02.01.2006"), a.Days))
		}
	}

	if len(data.Holidays) > 0 {
		pdf.Ln(4)
		pdf.SetFont(fontFamily, "B", 12)
		pdf.Cell(0, 8, "Holidays")
		pdf.Ln(8)
		pdf.SetFont(fontFamily, "", 10)
		for _, h := range data.Holidays {
			line(fmt.Sprintf("%s %s (scope %.1f)", h.Date.Format("02.01.2006"), h.Name, h.Scope))
		}
	}

	return pdf
}
