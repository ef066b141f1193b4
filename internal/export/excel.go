// Package export renders branch booking reports as Excel workbooks for the
// dashboard download action.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"drivedesk/internal/models"

	"github.com/xuri/excelize/v2"
)

const (
	bookingsSheet = "Bookings"
	feedbackSheet = "Feedback"
)

// BranchReport builds a workbook with one sheet of bookings and one of
// feedback for a branch. The caller owns closing the file.
func BranchReport(branch string, bookings []models.Booking, feedback []models.Feedback) (*excelize.File, error) {
	f := excelize.NewFile()

	index, err := f.NewSheet(bookingsSheet)
	if err != nil {
		return nil, fmt.Errorf("error creating sheet: %w", err)
	}
	f.SetActiveSheet(index)

	_ = f.SetCellValue(bookingsSheet, "A1", fmt.Sprintf("%s branch — test drive bookings", branch))
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	_ = f.MergeCell(bookingsSheet, "A1", "I1")
	_ = f.SetCellStyle(bookingsSheet, "A1", "A1", headerStyle)

	columnStyle, _ := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font: &excelize.Font{Bold: true},
	})

	bookingHeaders := []string{"ID", "Customer", "Email", "Phone", "Model", "Dealership", "Date", "Time", "Status"}
	for col, header := range bookingHeaders {
		cell, _ := excelize.CoordinatesToCellName(col+1, 2)
		_ = f.SetCellValue(bookingsSheet, cell, header)
		_ = f.SetCellStyle(bookingsSheet, cell, cell, columnStyle)
	}

	for row, b := range bookings {
		values := []interface{}{b.ID, b.Customer, b.Email, b.Phone, b.Model, b.Dealership, b.Date, b.Time, b.Status}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+3)
			_ = f.SetCellValue(bookingsSheet, cell, v)
		}
	}

	_ = f.SetColWidth(bookingsSheet, "A", "A", 38)
	_ = f.SetColWidth(bookingsSheet, "B", "I", 22)

	if _, err := f.NewSheet(feedbackSheet); err != nil {
		return nil, fmt.Errorf("error creating sheet: %w", err)
	}

	feedbackHeaders := []string{"Booking ID", "Customer", "Average rating", "Comments", "Recorded"}
	for col, header := range feedbackHeaders {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		_ = f.SetCellValue(feedbackSheet, cell, header)
		_ = f.SetCellStyle(feedbackSheet, cell, cell, columnStyle)
	}

	for row, fb := range feedback {
		values := []interface{}{fb.BookingID, fb.CustomerName, fb.AverageRating, fb.Comments, fb.CreatedAt.Format("2006-01-02")}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			_ = f.SetCellValue(feedbackSheet, cell, v)
		}
	}

	_ = f.SetColWidth(feedbackSheet, "A", "A", 38)
	_ = f.SetColWidth(feedbackSheet, "B", "E", 22)

	_ = f.DeleteSheet("Sheet1")

	return f, nil
}

// SaveBranchReport writes the workbook under dir and returns the file path.
func SaveBranchReport(dir, branch string, bookings []models.Booking, feedback []models.Feedback) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("error creating export directory: %w", err)
	}

	f, err := BranchReport(branch, bookings, feedback)
	if err != nil {
		return "", err
	}
	defer f.Close()

	fileName := fmt.Sprintf("bookings_%s_%s.xlsx", sanitize(branch), time.Now().Format("2006-01-02"))
	filePath := filepath.Join(dir, fileName)

	if err := f.SaveAs(filePath); err != nil {
		return "", fmt.Errorf("error saving file: %w", err)
	}

	return filePath, nil
}

func sanitize(name string) string {
	out := make([]rune, 0, len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			out = append(out, r)
		default:
			out = append(out, '_')
		}
	}
	return string(out)
}
