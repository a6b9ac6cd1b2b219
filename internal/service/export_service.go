package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/jayelcee/InternHQ-sub003/config"
	"github.com/jayelcee/InternHQ-sub003/internal/dto"
	"github.com/jayelcee/InternHQ-sub003/internal/model"
	"github.com/jayelcee/InternHQ-sub003/internal/repository"
)

// ── 导出模块业务错误 ──

var (
	ErrExportNoLogs       = errors.New("该时间范围内无打卡记录")
	ErrExportGenerateFail = errors.New("生成导出文件失败")
)

// ExportService 导出业务接口
//
// 设计说明：
//   - DTR（Daily Time Record）导出为 Excel (.xlsx)：逐日打卡明细 + 工时小计
//   - 打卡会话导出为 iCalendar (.ics)：每个连续会话一个 VEVENT
//   - 导出以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response
type ExportService interface {
	// ExportDTR 导出某用户某月（YYYY-MM，空串为全部）的打卡明细 Excel
	ExportDTR(ctx context.Context, userID, month string) (*bytes.Buffer, string, error)
	// ExportCalendar 导出某用户全部已完成会话为 iCalendar
	ExportCalendar(ctx context.Context, userID string) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	stats  StatsService
	policy *config.PolicyConfig
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, stats StatsService, policy *config.PolicyConfig, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, stats: stats, policy: policy, logger: logger}
}

// ═══════════════════════════════════════════════════════════
// ExportDTR — 导出打卡明细为 Excel
// ═══════════════════════════════════════════════════════════
//
// 输出格式：
//   - 表头: | 日期 | 上班 | 下班 | 类型 | 正班(h) | 加班(h) | 溢出(h) |
//   - 每个会话一行，同日多会话各占一行
//   - 末行合计
//
// 返回值：buf（Excel 内容）, filename（建议文件名）, error

func (s *exportService) ExportDTR(ctx context.Context, userID, month string) (*bytes.Buffer, string, error) {
	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.String("user_id", userID), zap.Error(err))
		return nil, "", err
	}

	stats, err := s.stats.CalculateTimeStatistics(ctx, userID, dto.StatsOptions{})
	if err != nil {
		return nil, "", err
	}

	days := stats.Days
	if month != "" {
		filtered := days[:0:0]
		for _, day := range days {
			if strings.HasPrefix(day.Date, month) {
				filtered = append(filtered, day)
			}
		}
		days = filtered
	}
	if len(days) == 0 {
		return nil, "", ErrExportNoLogs
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "打卡明细"
	idx, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	f.SetColWidth(sheetName, "A", "A", 12)
	f.SetColWidth(sheetName, "B", "C", 10)
	f.SetColWidth(sheetName, "D", "D", 18)
	f.SetColWidth(sheetName, "E", "G", 10)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	// 标题行
	title := fmt.Sprintf("%s — 打卡明细", user.Name)
	if month != "" {
		title = fmt.Sprintf("%s (%s)", title, month)
	}
	f.SetCellValue(sheetName, "A1", title)
	f.MergeCell(sheetName, "A1", "G1")
	f.SetCellStyle(sheetName, "A1", "A1", headerStyle)

	// 表头
	headers := []string{"日期", "上班", "下班", "类型", "正班(h)", "加班(h)", "溢出(h)"}
	for i, h := range headers {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetCellValue(sheetName, cell(col, 2), h)
	}

	typeNames := map[string]string{
		model.LogTypeRegular:          "正班",
		model.LogTypeOvertime:         "加班",
		model.LogTypeExtendedOvertime: "延长加班",
	}

	row := 3
	for _, day := range days {
		for _, sess := range day.Sessions {
			f.SetCellValue(sheetName, cell("A", row), day.Date)
			f.SetCellValue(sheetName, cell("B", row), sess.TimeIn.Format("15:04"))
			if sess.TimeOut != nil {
				f.SetCellValue(sheetName, cell("C", row), sess.TimeOut.Format("15:04"))
			} else {
				f.SetCellValue(sheetName, cell("C", row), "进行中")
			}
			sessType := typeNames[sess.SessionType]
			if sess.IsContinuous {
				sessType += "（连续）"
			}
			f.SetCellValue(sheetName, cell("D", row), sessType)
			f.SetCellValue(sheetName, cell("E", row), sess.RegularHours)
			f.SetCellValue(sheetName, cell("F", row), sess.OvertimeHours)
			row++
		}
		// 溢出按日记在当日最后一行
		if day.OverflowHours > 0 {
			f.SetCellValue(sheetName, cell("G", row-1), day.OverflowHours)
		}
	}

	// 合计行
	f.SetCellValue(sheetName, cell("A", row), "合计")
	f.SetCellValue(sheetName, cell("E", row), stats.RegularHoursTotal)
	f.SetCellValue(sheetName, cell("F", row), stats.OvertimeHoursTotal)
	f.SetCellValue(sheetName, cell("G", row), stats.OverflowHoursTotal)

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("打卡明细_%s.xlsx", user.Name)
	if month != "" {
		filename = fmt.Sprintf("打卡明细_%s_%s.xlsx", user.Name, month)
	}
	return buf, filename, nil
}

// ═══════════════════════════════════════════════════════════
// ExportCalendar — 导出打卡会话为 iCalendar
// ═══════════════════════════════════════════════════════════
//
// 每个连续会话生成一个 VEVENT（进行中的会话跳过），
// SUMMARY 标注类型，DESCRIPTION 标注会话内日志条数。

func (s *exportService) ExportCalendar(ctx context.Context, userID string) (*bytes.Buffer, string, error) {
	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.String("user_id", userID), zap.Error(err))
		return nil, "", err
	}

	logs, err := s.repo.TimeLog.ListByUser(ctx, userID, nil, nil)
	if err != nil {
		s.logger.Error("查询用户日志失败", zap.String("user_id", userID), zap.Error(err))
		return nil, "", err
	}
	if len(logs) == 0 {
		return nil, "", ErrExportNoLogs
	}

	sessions := GroupIntoSessions(logs, s.policy.ContinuityTolerance, nil)

	typeNames := map[string]string{
		model.LogTypeRegular:          "正班",
		model.LogTypeOvertime:         "加班",
		model.LogTypeExtendedOvertime: "延长加班",
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//InternHQ//Time Logs//CN")

	now := time.Now()
	for _, sess := range sessions {
		if sess.TimeOut == nil {
			continue
		}

		summary := fmt.Sprintf("实习打卡 — %s", typeNames[sess.SessionType])
		if sess.IsContinuous {
			summary += "（连续会话）"
		}

		evt := cal.AddEvent(fmt.Sprintf("%s-%d@internhq", sess.Logs[0].TimeLogID, sess.TimeIn.Unix()))
		evt.SetCreatedTime(now)
		evt.SetDtStampTime(now)
		evt.SetStartAt(sess.TimeIn)
		evt.SetEndAt(*sess.TimeOut)
		evt.SetSummary(summary)
		evt.SetDescription(fmt.Sprintf("包含 %d 条打卡记录", len(sess.Logs)))
	}

	buf := bytes.NewBufferString(cal.Serialize())
	filename := fmt.Sprintf("打卡日历_%s.ics", user.Name)
	return buf, filename, nil
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
