package usecase

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/rilesCL/Projet-Leandrose-sub000/internal/domain"
	"github.com/rilesCL/Projet-Leandrose-sub000/pkg/apperror"
)

var exportColumns = []string{
	"ID", "APPLICATION", "STUDENT", "EMPLOYER", "OFFER", "STATUS",
	"START DATE", "WEEKS", "LOCATION", "COMPENSATION",
	"STUDENT SIGNED", "EMPLOYER SIGNED", "MANAGER SIGNED", "INSTRUCTOR", "MODIFIED",
}

// Export writes the agreements matching status to an Excel workbook
func (uc *agreementUsecase) Export(ctx context.Context, status domain.AgreementStatus) ([]byte, string, error) {
	agreements, err := uc.ListAll(ctx, status)
	if err != nil {
		return nil, "", err
	}

	data, err := agreementsWorkbook(agreements)
	if err != nil {
		return nil, "", apperror.Internal(err)
	}
	filename := fmt.Sprintf("agreements_%s.xlsx", uc.now().Format("20060102_150405"))
	return data, filename, nil
}

func agreementsWorkbook(agreements []domain.Agreement) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Agreements"
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, err
	}

	for i, name := range exportColumns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, name)
	}

	// Dark blue header with white text
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#1E3A5F"}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	endCell, _ := excelize.CoordinatesToCellName(len(exportColumns), 1)
	f.SetCellStyle(sheetName, "A1", endCell, headerStyle)

	for rowIdx, ag := range agreements {
		values := []any{
			ag.ID, ag.ApplicationID, ag.StudentID, ag.EmployerID, deref(ag.OfferTitle), string(ag.Status),
			dateCell(ag.StartDate), ag.DurationWeeks, ag.Location, compensationCell(ag.Compensation),
			dateCell(ag.StudentSignedAt), dateCell(ag.EmployerSignedAt), dateCell(ag.ManagerSignedAt),
			idCell(ag.InstructorID), ag.ModifiedAt.Format("2006-01-02 15:04"),
		}
		for colIdx, v := range values {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			f.SetCellValue(sheetName, cell, v)
		}
	}

	for i := range exportColumns {
		colName, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheetName, colName, colName, 18)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}
	return buf.Bytes(), nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func dateCell(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}

func compensationCell(c *float64) any {
	if c == nil {
		return ""
	}
	return *c
}

func idCell(id *int64) any {
	if id == nil {
		return ""
	}
	return *id
}
