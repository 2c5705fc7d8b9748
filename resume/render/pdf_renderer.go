package render

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/phpdave11/gofpdf"

	"resume-tailor/resume/model"
)

// Rendering must be byte-for-byte reproducible for equal input, so the
// document metadata date is pinned instead of taken from the clock.
var fixedCreationDate = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

const (
	pageMargin     = 14.0
	nameSize       = 22.0
	sectionSize    = 13.0
	bodySize       = 10.0
	smallSize      = 9.0
	lineHeight     = 5.0
	sectionGap     = 6.0
	fullWidth      = 0.0
	bulletIndent   = 6.0
	contentWidthA4 = 210 - 2*pageMargin
)

// RenderPDF lays out a structured resume as a single fixed-template PDF
// and returns the serialized bytes. Missing optional sections are omitted
// entirely rather than rendered empty.
func RenderPDF(r model.Resume) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	// Pin both datestamps and sort catalog objects so equal input yields
	// byte-identical output.
	pdf.SetCreationDate(fixedCreationDate)
	pdf.SetModificationDate(fixedCreationDate)
	pdf.SetCatalogSort(true)
	pdf.SetTitle(r.Personal.Name+" - Resume", false)
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, pageMargin)
	pdf.AddPage()

	renderHeader(pdf, r.Personal)

	if strings.TrimSpace(r.Summary) != "" {
		sectionTitle(pdf, "Professional Summary")
		pdf.SetFont("Helvetica", "", bodySize)
		pdf.SetTextColor(71, 85, 105)
		pdf.MultiCell(fullWidth, lineHeight, r.Summary, "", "L", false)
		pdf.Ln(sectionGap)
	}

	if len(r.Experience) > 0 {
		sectionTitle(pdf, "Experience")
		for _, exp := range r.Experience {
			renderExperience(pdf, exp)
		}
		pdf.Ln(sectionGap - 2)
	}

	if len(r.Education) > 0 {
		sectionTitle(pdf, "Education")
		for _, edu := range r.Education {
			renderEducation(pdf, edu)
		}
		pdf.Ln(sectionGap - 2)
	}

	renderSkills(pdf, r.Skills)

	if len(r.Certifications) > 0 {
		sectionTitle(pdf, "Certifications")
		pdf.SetFont("Helvetica", "", bodySize)
		pdf.SetTextColor(71, 85, 105)
		for _, cert := range r.Certifications {
			line := cert.Name + " - " + cert.Issuer
			if cert.Date != "" {
				line += " (" + cert.Date + ")"
			}
			pdf.MultiCell(fullWidth, lineHeight, line, "", "L", false)
		}
		pdf.Ln(sectionGap)
	}

	if len(r.Projects) > 0 {
		sectionTitle(pdf, "Projects")
		for _, proj := range r.Projects {
			renderProject(pdf, proj)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func renderHeader(pdf *gofpdf.Fpdf, p model.PersonalInfo) {
	pdf.SetFont("Helvetica", "B", nameSize)
	pdf.SetTextColor(30, 41, 59)
	pdf.Cell(fullWidth, 9, p.Name)
	pdf.Ln(9)

	contact := contactLine(p)
	if contact != "" {
		pdf.SetFont("Helvetica", "", smallSize)
		pdf.SetTextColor(100, 116, 139)
		pdf.Cell(fullWidth, lineHeight, contact)
		pdf.Ln(lineHeight)
	}

	links := linkLine(p)
	if links != "" {
		pdf.SetFont("Helvetica", "", smallSize)
		pdf.SetTextColor(37, 99, 235)
		pdf.Cell(fullWidth, lineHeight, links)
		pdf.Ln(lineHeight)
	}

	pdf.SetDrawColor(37, 99, 235)
	pdf.SetLineWidth(0.6)
	y := pdf.GetY() + 2
	pdf.Line(pageMargin, y, pageMargin+contentWidthA4, y)
	pdf.SetY(y + 4)
}

func renderExperience(pdf *gofpdf.Fpdf, exp model.Experience) {
	pdf.SetFont("Helvetica", "B", bodySize+1)
	pdf.SetTextColor(30, 41, 59)
	pdf.Cell(contentWidthA4*0.7, lineHeight, exp.Position)

	pdf.SetFont("Helvetica", "", smallSize)
	pdf.SetTextColor(100, 116, 139)
	pdf.CellFormat(contentWidthA4*0.3, lineHeight, dateRange(exp), "", 1, "R", false, 0, "")

	companyLine := exp.Company
	if exp.Location != "" {
		companyLine += ", " + exp.Location
	}
	pdf.SetFont("Helvetica", "I", bodySize)
	pdf.SetTextColor(71, 85, 105)
	pdf.Cell(fullWidth, lineHeight, companyLine)
	pdf.Ln(lineHeight + 1)

	pdf.SetFont("Helvetica", "", smallSize+0.5)
	for _, bullet := range exp.Bullets {
		pdf.SetX(pageMargin + bulletIndent)
		pdf.SetTextColor(37, 99, 235)
		pdf.Cell(4, lineHeight-0.5, "-")
		pdf.SetTextColor(71, 85, 105)
		pdf.MultiCell(contentWidthA4-bulletIndent-4, lineHeight-0.5, bullet, "", "L", false)
	}
	pdf.Ln(3)
}

func renderEducation(pdf *gofpdf.Fpdf, edu model.Education) {
	degree := edu.Degree
	if edu.Field != "" {
		degree += " in " + edu.Field
	}
	pdf.SetFont("Helvetica", "B", bodySize+1)
	pdf.SetTextColor(30, 41, 59)
	pdf.Cell(contentWidthA4*0.7, lineHeight, degree)

	pdf.SetFont("Helvetica", "", smallSize)
	pdf.SetTextColor(100, 116, 139)
	pdf.CellFormat(contentWidthA4*0.3, lineHeight, edu.GraduationDate, "", 1, "R", false, 0, "")

	inst := edu.Institution
	if edu.GPA != "" {
		inst += " - GPA: " + edu.GPA
	}
	pdf.SetFont("Helvetica", "", smallSize+0.5)
	pdf.SetTextColor(71, 85, 105)
	pdf.Cell(fullWidth, lineHeight, inst)
	pdf.Ln(lineHeight + 2)
}

func renderSkills(pdf *gofpdf.Fpdf, skills model.Skills) {
	if len(skills.Technical) == 0 && len(skills.Soft) == 0 && len(skills.Languages) == 0 {
		return
	}
	sectionTitle(pdf, "Skills")
	pdf.SetTextColor(71, 85, 105)
	writeSkillRow(pdf, "Technical", skills.Technical)
	writeSkillRow(pdf, "Soft Skills", skills.Soft)
	writeSkillRow(pdf, "Languages", skills.Languages)
	pdf.Ln(sectionGap - 2)
}

func writeSkillRow(pdf *gofpdf.Fpdf, label string, items []string) {
	if len(items) == 0 {
		return
	}
	pdf.SetFont("Helvetica", "B", smallSize+0.5)
	pdf.Cell(26, lineHeight, label+":")
	pdf.SetFont("Helvetica", "", smallSize+0.5)
	pdf.MultiCell(contentWidthA4-26, lineHeight, strings.Join(items, ", "), "", "L", false)
}

func renderProject(pdf *gofpdf.Fpdf, proj model.Project) {
	title := proj.Name
	if proj.Link != "" {
		title += " - " + proj.Link
	}
	pdf.SetFont("Helvetica", "B", bodySize)
	pdf.SetTextColor(30, 41, 59)
	pdf.Cell(fullWidth, lineHeight, title)
	pdf.Ln(lineHeight)

	pdf.SetFont("Helvetica", "", smallSize+0.5)
	pdf.SetTextColor(71, 85, 105)
	pdf.MultiCell(fullWidth, lineHeight-0.5, proj.Description, "", "L", false)

	if len(proj.Technologies) > 0 {
		pdf.SetFont("Helvetica", "I", smallSize)
		pdf.SetTextColor(100, 116, 139)
		pdf.MultiCell(fullWidth, lineHeight-0.5, "Technologies: "+strings.Join(proj.Technologies, ", "), "", "L", false)
	}
	pdf.Ln(2)
}

func sectionTitle(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont("Helvetica", "B", sectionSize)
	pdf.SetTextColor(30, 41, 59)
	pdf.Cell(fullWidth, 6, title)
	pdf.Ln(6)
	pdf.SetDrawColor(226, 232, 240)
	pdf.SetLineWidth(0.3)
	y := pdf.GetY()
	pdf.Line(pageMargin, y, pageMargin+contentWidthA4, y)
	pdf.SetY(y + 2.5)
}

func contactLine(p model.PersonalInfo) string {
	parts := make([]string, 0, 3)
	for _, s := range []string{p.Email, p.Phone, p.Location} {
		if strings.TrimSpace(s) != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "  |  ")
}

func linkLine(p model.PersonalInfo) string {
	parts := make([]string, 0, 2)
	for _, s := range []string{p.LinkedIn, p.Website} {
		if strings.TrimSpace(s) != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "  |  ")
}

func dateRange(exp model.Experience) string {
	end := exp.EndDate
	if exp.Current || end == "" {
		end = "Present"
	}
	return exp.StartDate + " - " + end
}
