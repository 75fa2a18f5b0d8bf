package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/MRsanjuedit/FPMS-Backend/internal/model"
	"github.com/MRsanjuedit/FPMS-Backend/internal/repository"
)

// ── export errors ──

var (
	ErrExportNoSubmissions = errors.New("this form has no submissions yet")
	ErrExportGenerateFail  = errors.New("failed to generate the Excel file")
)

const (
	submissionsSheet = "Submissions"
	summarySheet     = "Summary"
)

var submissionHeaders = []string{
	"Faculty", "Email", "Role", "College", "Department",
	"Criteria", "Module", "Task", "Claimed", "Max", "Verified",
	"Status", "Flow", "Pending reviewers", "Reviewed by", "Accepted", "Updated at",
}

var summaryHeaders = []string{"Faculty", "Email", "Department", "Submitted", "Approved", "Accepted", "Accepted score"}

// ExportService reviewer exports.
//
// The workbook is returned as a buffer; the handler sets the download headers.
type ExportService interface {
	// ExportFormSubmissions every submission against a form, one row each,
	// plus a per-faculty summary sheet.
	ExportFormSubmissions(ctx context.Context, formID string) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewExportService creates an ExportService.
func NewExportService(repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, logger: logger}
}

// ═══════════════════════════════════════════════════════════
// ExportFormSubmissions
// ═══════════════════════════════════════════════════════════

func (s *exportService) ExportFormSubmissions(ctx context.Context, formID string) (*bytes.Buffer, string, error) {
	// 1. rubric labels
	form, err := s.repo.Form.GetTree(ctx, formID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrFormNotFound
		}
		s.logger.Error("load form failed", zap.String("form_id", formID), zap.Error(err))
		return nil, "", err
	}
	labels := rubricLabels(form)

	// 2. submissions
	subs, err := s.repo.Submission.ListByForm(ctx, formID)
	if err != nil {
		s.logger.Error("load form submissions failed", zap.String("form_id", formID), zap.Error(err))
		return nil, "", err
	}
	if len(subs) == 0 {
		return nil, "", ErrExportNoSubmissions
	}
	sort.SliceStable(subs, func(i, j int) bool {
		if subs[i].FacultyName != subs[j].FacultyName {
			return subs[i].FacultyName < subs[j].FacultyName
		}
		return labels.position(subs[i].TaskID) < labels.position(subs[j].TaskID)
	})

	// 3. workbook
	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(submissionsSheet)
	if err != nil {
		s.logger.Error("create sheet failed", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}
	f.SetActiveSheet(idx)
	if _, err := f.NewSheet(summarySheet); err != nil {
		s.logger.Error("create sheet failed", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}
	f.DeleteSheet("Sheet1")

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	// title row, then headers
	f.SetCellValue(submissionsSheet, "A1", fmt.Sprintf("%s: submissions", form.Title))
	f.MergeCell(submissionsSheet, "A1", cell(colName(len(submissionHeaders)-1), 1))
	f.SetCellStyle(submissionsSheet, "A1", "A1", headerStyle)
	writeHeader(f, submissionsSheet, 2, submissionHeaders, headerStyle)
	f.SetColWidth(submissionsSheet, "A", "B", 24)
	f.SetColWidth(submissionsSheet, "C", colName(len(submissionHeaders)-1), 16)

	row := 3
	for i := range subs {
		sub := &subs[i]
		verified := ""
		if sub.VerifiedScore != nil {
			verified = fmt.Sprintf("%g", *sub.VerifiedScore)
		}
		accepted := "no"
		if sub.AcceptedAt != nil {
			accepted = formatTime(*sub.AcceptedAt)
		}
		values := []interface{}{
			sub.FacultyName, sub.FacultyEmail, sub.FacultyRole, sub.College, sub.Department,
			labels.criteria(sub.CriteriaID), labels.module(sub.TaskID), labels.task(sub.TaskID),
			sub.ClaimedScore, sub.MaxMarks, verified,
			sub.Status, sub.CurrentFlow, strings.Join(sub.ActiveRoleKeys, ", "), sub.ReviewedByRole,
			accepted, formatTime(sub.UpdatedAt),
		}
		for c, v := range values {
			f.SetCellValue(submissionsSheet, cell(colName(c), row), v)
		}
		row++
	}

	// per-faculty summary
	writeHeader(f, summarySheet, 1, summaryHeaders, headerStyle)
	f.SetColWidth(summarySheet, "A", "C", 24)
	row = 2
	for _, line := range summarize(subs) {
		values := []interface{}{
			line.name, line.email, line.department, line.submitted, line.approved, line.accepted, line.acceptedScore,
		}
		for c, v := range values {
			f.SetCellValue(summarySheet, cell(colName(c), row), v)
		}
		row++
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("write workbook failed", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	s.logger.Info("form submissions exported", zap.String("form_id", formID), zap.Int("rows", len(subs)))
	return buf, fmt.Sprintf("submissions_%s.xlsx", safeFilename(form.FormID)), nil
}

// ── helpers ──

type rubricIndex struct {
	criteriaTitles map[string]string
	moduleTitles   map[string]string
	taskTitles     map[string]string
	taskOrder      map[string]int
}

func rubricLabels(form *model.Form) rubricIndex {
	idx := rubricIndex{
		criteriaTitles: make(map[string]string),
		moduleTitles:   make(map[string]string),
		taskTitles:     make(map[string]string),
		taskOrder:      make(map[string]int),
	}
	n := 0
	for _, c := range form.Criteria {
		idx.criteriaTitles[c.CriteriaID] = c.Title
		for _, m := range c.Modules {
			for _, t := range m.Tasks {
				idx.moduleTitles[t.TaskID] = m.Title
				idx.taskTitles[t.TaskID] = t.Title
				idx.taskOrder[t.TaskID] = n
				n++
			}
		}
	}
	return idx
}

func (r rubricIndex) criteria(id string) string   { return labelOr(r.criteriaTitles, id) }
func (r rubricIndex) module(taskID string) string { return r.moduleTitles[taskID] }
func (r rubricIndex) task(id string) string       { return labelOr(r.taskTitles, id) }

// position unknown tasks sort after the rubric's own.
func (r rubricIndex) position(taskID string) int {
	if p, ok := r.taskOrder[taskID]; ok {
		return p
	}
	return len(r.taskOrder)
}

func labelOr(m map[string]string, id string) string {
	if v, ok := m[id]; ok && v != "" {
		return v
	}
	return id
}

type summaryLine struct {
	name          string
	email         string
	department    string
	submitted     int
	approved      int
	accepted      int
	acceptedScore float64
}

func summarize(subs []model.Submission) []summaryLine {
	byFaculty := make(map[string]*summaryLine)
	var order []string
	for i := range subs {
		sub := &subs[i]
		line, ok := byFaculty[sub.FacultyID]
		if !ok {
			line = &summaryLine{name: sub.FacultyName, email: sub.FacultyEmail, department: sub.Department}
			byFaculty[sub.FacultyID] = line
			order = append(order, sub.FacultyID)
		}
		line.submitted++
		if sub.Status == model.SubmissionStatusApproved {
			line.approved++
		}
		if sub.AcceptedAt != nil {
			line.accepted++
			line.acceptedScore += acceptedScore(sub)
		}
	}
	out := make([]summaryLine, 0, len(order))
	for _, id := range order {
		out = append(out, *byFaculty[id])
	}
	return out
}

func writeHeader(f *excelize.File, sheet string, row int, headers []string, style int) {
	for i, h := range headers {
		f.SetCellValue(sheet, cell(colName(i), row), h)
	}
	f.SetCellStyle(sheet, cell("A", row), cell(colName(len(headers)-1), row), style)
}

func safeFilename(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, name)
}

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
