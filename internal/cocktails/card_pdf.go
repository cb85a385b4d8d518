package cocktails

import (
	"bytes"
	"fmt"

	"github.com/phpdave11/gofpdf"
)

// BuildRecipeCard renders a printable A5 recipe card for a cocktail.
func BuildRecipeCard(c *Cocktail) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A5", "")
	pdf.SetTitle("ShakeItUp Recipe Card", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, c.Name)
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "", 11)
	kind := "Non-alcoholic"
	if c.Alcoholic {
		kind = "Alcoholic"
	}
	line := kind
	if c.FlavorStyle != "" {
		line += " - " + c.FlavorStyle
	}
	if c.OfficialRecipe {
		line += " - official recipe"
	}
	pdf.Cell(0, 7, line)
	pdf.Ln(9)

	if avg := Average(c.Ratings); len(c.Ratings) > 0 {
		pdf.SetFont("Helvetica", "I", 10)
		pdf.Cell(0, 6, fmt.Sprintf("Rated %.1f/5 from %d reviews", avg, len(c.Ratings)))
		pdf.Ln(8)
	}

	pdf.SetFont("Helvetica", "B", 13)
	pdf.Cell(0, 8, "Ingredients")
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 11)
	if len(c.Ingredients) == 0 {
		pdf.Cell(0, 6, "(none listed)")
		pdf.Ln(6)
	}
	for _, ing := range c.Ingredients {
		pdf.Cell(0, 6, "- "+ing)
		pdf.Ln(6)
	}
	pdf.Ln(4)

	if c.Instructions != "" {
		pdf.SetFont("Helvetica", "B", 13)
		pdf.Cell(0, 8, "Instructions")
		pdf.Ln(8)

		pdf.SetFont("Helvetica", "", 11)
		pdf.MultiCell(0, 6, c.Instructions, "", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
