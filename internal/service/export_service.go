package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/gradebook-api/internal/models"
	appErrors "github.com/noah-isme/gradebook-api/pkg/errors"
	"github.com/noah-isme/gradebook-api/pkg/export"
)

const (
	colRank         = "Rank"
	colStudent      = "Student"
	colAverage      = "Average"
	colAppreciation = "Appreciation"
	notAvailable    = "-"
	ungradedLabel   = "Ungraded"
)

type courseStatisticsSource interface {
	Course(ctx context.Context, courseID string) (*models.CourseStatisticsView, bool, error)
}

// ExportResult is a rendered course report ready to be streamed.
type ExportResult struct {
	Filename    string
	ContentType string
	Body        []byte
}

// ExportService renders course statistics into CSV or PDF reports.
type ExportService struct {
	stats     courseStatisticsSource
	decimals  int
	renderers map[export.Format]export.Renderer
	logger    *zap.Logger
	now       func() time.Time
}

// NewExportService constructs an ExportService. Averages are rounded to decimals places.
func NewExportService(stats courseStatisticsSource, decimals int, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if decimals < 0 {
		decimals = 2
	}
	return &ExportService{
		stats:    stats,
		decimals: decimals,
		renderers: map[export.Format]export.Renderer{
			export.FormatCSV: export.RendererFor(export.FormatCSV),
			export.FormatPDF: export.RendererFor(export.FormatPDF),
		},
		logger: logger,
		now:    time.Now,
	}
}

// CourseReport renders the course leaderboard and summary in the requested format.
func (s *ExportService) CourseReport(ctx context.Context, courseID, format string) (*ExportResult, error) {
	f, err := export.ParseFormat(format)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "unsupported export format")
	}
	stats, _, err := s.stats.Course(ctx, courseID)
	if err != nil {
		return nil, err
	}

	body, err := s.renderers[f].Render(s.courseReport(stats))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render report")
	}
	s.logger.Info("course report exported", zap.String("course_id", courseID), zap.String("format", string(f)), zap.Int("bytes", len(body)))
	return &ExportResult{
		Filename:    fmt.Sprintf("%s-statistics-%s.%s", sanitizeFilename(stats.CourseID), s.now().UTC().Format("20060102"), f),
		ContentType: f.ContentType(),
		Body:        body,
	}, nil
}

func (s *ExportService) courseReport(stats *models.CourseStatisticsView) export.Report {
	title := stats.CourseName
	if title == "" {
		title = stats.CourseID
	}
	report := export.Report{
		Title: title,
		Summary: []export.Field{
			{Label: "Scale", Value: "0-" + s.number(stats.ScaleMax)},
			{Label: "Participation", Value: fmt.Sprintf("%d/%d (%s%%)", stats.Participation.Graded, stats.Participation.Enrolled, s.number(stats.Participation.Rate))},
		},
		Table: export.Dataset{Headers: []string{colRank, colStudent, colAverage, colAppreciation}},
	}
	if stats.Summary != nil {
		report.Summary = append(report.Summary,
			export.Field{Label: "Class average", Value: s.number(stats.Summary.Mean)},
			export.Field{Label: "Median", Value: s.number(stats.Summary.Median)},
			export.Field{Label: "Standard deviation", Value: s.number(stats.Summary.StdDev)},
			export.Field{Label: "Range", Value: s.number(stats.Summary.Min) + " - " + s.number(stats.Summary.Max)},
		)
	}
	for _, p := range stats.PassRates {
		report.Summary = append(report.Summary, export.Field{
			Label: "Pass rate >= " + s.number(p.Threshold),
			Value: s.number(p.Rate) + "%",
		})
	}

	ranks := make(map[string]int, len(stats.Leaderboard))
	for _, entry := range stats.Leaderboard {
		ranks[entry.StudentID] = entry.Rank
	}
	for _, entry := range stats.Leaderboard {
		report.Table.Rows = append(report.Table.Rows, s.studentRow(findStudent(stats.Students, entry.StudentID), entry.Rank))
	}
	for _, st := range stats.Students {
		if _, ranked := ranks[st.StudentID]; !ranked {
			report.Table.Rows = append(report.Table.Rows, s.studentRow(st, 0))
		}
	}
	return report
}

func (s *ExportService) studentRow(st models.StudentAverageView, rank int) map[string]string {
	name := st.StudentName
	if name == "" {
		name = st.StudentID
	}
	row := map[string]string{colStudent: name, colRank: notAvailable, colAverage: notAvailable, colAppreciation: ungradedLabel}
	if rank > 0 {
		row[colRank] = strconv.Itoa(rank)
	}
	if st.Average != nil {
		row[colAverage] = s.number(*st.Average)
		row[colAppreciation] = st.Appreciation
	}
	return row
}

func (s *ExportService) number(v float64) string {
	return strconv.FormatFloat(v, 'f', s.decimals, 64)
}

func findStudent(students []models.StudentAverageView, id string) models.StudentAverageView {
	for _, st := range students {
		if st.StudentID == id {
			return st
		}
	}
	return models.StudentAverageView{StudentID: id}
}

func sanitizeFilename(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '-'
		}
	}, name)
}
