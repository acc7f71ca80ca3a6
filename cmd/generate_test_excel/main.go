package main

import (
	"fmt"

	"estate-import/internal/models"

	"github.com/xuri/excelize/v2"
)

// Generates a sample listings workbook matching the default field mapping,
// including a few rows the validator is expected to reject.
func main() {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Listings"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		fmt.Printf("Error creating sheet: %v\n", err)
		return
	}

	columns := models.DefaultColumns()

	// Write headers
	for i, cm := range columns {
		cell := fmt.Sprintf("%s1", getColumnName(i))
		f.SetCellValue(sheetName, cell, cm.Column)
	}

	// Set header style
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})
	f.SetCellStyle(sheetName, "A1", fmt.Sprintf("%s1", getColumnName(len(columns)-1)), headerStyle)

	testData := [][]interface{}{
		// Legacy ID, Title, Description, Address, City, District, Status, Deal Type,
		// Sale Price, Rent Price, Total Area, Living Area, Rooms, Bedrooms, Bathrooms,
		// Floor, Floors Total, Year Built, Latitude, Longitude, Furnished, Parking
		{"VS001", "Sunny 2-room flat", "Renovated flat near the park", "12 Seaside Ave", "Varna", "Center",
			"available", "sale", "125000", "", "74.5", "58.2", 2, 1, 1, 4, 8, 2009, "43.2141", "27.9147", "yes", "no"},
		{"VS002", "Family house with garden", "", "3 Orchard Lane", "Varna", "Vinitsa",
			"available", "sale", "289000", "", "210", "168", 6, 4, 2, "", 2, 1998, "43.2267", "27.9803", "no", "yes"},
		{"VS003", "Studio for rent", "Fully furnished studio", "8 Harbor St", "Varna", "Greek Quarter",
			"rented", "rent", "", "450", "38", "32.5", 1, 0, 1, 2, 5, 2015, "43.1996", "27.9106", "да", "+"},
		// Negative price: rejected by the validator
		{"VS004", "Bad price row", "", "1 Nowhere Rd", "Varna", "", "available", "sale",
			"-500", "", "60", "", 2, 1, 1, 1, 5, 2001, "", "", "", ""},
		// Unknown status: rejected by the validator
		{"VS005", "Bad status row", "", "2 Nowhere Rd", "Varna", "", "pending", "sale",
			"99000", "", "55", "", 2, 1, 1, 1, 5, 2001, "", "", "", ""},
		// Decimal comma and thousand separators both parse exactly
		{"VS006", "Penthouse", "", "20 Skyline Blvd", "Varna", "Briz", "available", "sale",
			"1,250,000.00", "", "185,5", "150", 5, 3, 2, 14, 14, 2021, "43.2354", "28.0044", "true", "1"},
	}

	for rowIdx, rowData := range testData {
		row := rowIdx + 2
		for colIdx, value := range rowData {
			cell := fmt.Sprintf("%s%d", getColumnName(colIdx), row)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	// Set column widths
	for i := range columns {
		colName := getColumnName(i)
		f.SetColWidth(sheetName, colName, colName, 16)
	}

	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	outputPath := "test_listings.xlsx"
	if err := f.SaveAs(outputPath); err != nil {
		fmt.Printf("Error saving file: %v\n", err)
		return
	}

	fmt.Printf("Generated %s with %d data rows\n", outputPath, len(testData))
}

func getColumnName(index int) string {
	result := ""
	for index >= 0 {
		result = string(rune('A'+(index%26))) + result
		index = index/26 - 1
	}
	return result
}
