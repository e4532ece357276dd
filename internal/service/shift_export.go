package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/ren-jimpo/shift-management-app-sub000/internal/dto"
	"github.com/ren-jimpo/shift-management-app-sub000/internal/model"
	"github.com/ren-jimpo/shift-management-app-sub000/internal/repository"
	"github.com/ren-jimpo/shift-management-app-sub000/pkg/timeutil"
)

// ErrExportGenerateFail the workbook could not be written.
var ErrExportGenerateFail = errors.New("failed to generate the export file")

// ═══════════════════════════════════════════════════════════
// ExportWeek — GET /shifts/export
// ═══════════════════════════════════════════════════════════
//
// Layout:
//   - row 1: store name and week
//   - row 2: | Login ID | Name | Mon dd | ... | Sun dd |
//   - one row per member of the store plus anyone holding a shift there
//   - cell: "<pattern> hh:mm-hh:mm (status)", "-" when free

func (s *shiftService) ExportWeek(ctx context.Context, req *dto.ShiftExportRequest) (*bytes.Buffer, string, error) {
	store, err := s.repo.Store.GetByID(ctx, req.StoreID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrStoreNotFound
		}
		return nil, "", err
	}
	from, to, err := timeutil.WeekWindow(req.WeekStart, "")
	if err != nil {
		return nil, "", invalidFields(err.Error(), "week_start")
	}

	shifts, err := s.repo.Shift.List(ctx, repository.ShiftFilter{StoreID: store.ID, DateFrom: &from, DateTo: &to})
	if err != nil {
		s.logger.Error("list week shifts failed", zap.Error(err))
		return nil, "", err
	}
	members, err := s.repo.User.List(ctx, repository.UserFilter{StoreID: store.ID, Role: model.RoleStaff})
	if err != nil {
		s.logger.Error("list store members failed", zap.Error(err))
		return nil, "", err
	}

	// index: user id → date → cell text
	cells := make(map[string]map[string]string)
	people := make(map[string]*model.User, len(members))
	for i := range members {
		people[members[i].ID] = &members[i]
	}
	for i := range shifts {
		sh := &shifts[i]
		if _, ok := people[sh.UserID]; !ok && sh.User != nil {
			people[sh.UserID] = sh.User
		}
		if cells[sh.UserID] == nil {
			cells[sh.UserID] = make(map[string]string)
		}
		text := sh.Status
		if sh.Pattern != nil {
			text = fmt.Sprintf("%s %s-%s (%s)", sh.Pattern.Name, clock(sh.Pattern.StartTime), clock(sh.Pattern.EndTime), sh.Status)
		}
		cells[sh.UserID][timeutil.FormatDate(sh.Date)] = text
	}

	rows := make([]*model.User, 0, len(people))
	for _, u := range people {
		rows = append(rows, u)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].LoginID < rows[j].LoginID })

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Roster"
	idx, _ := f.NewSheet(sheet)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	f.SetColWidth(sheet, "A", "A", 12)
	f.SetColWidth(sheet, "B", "B", 20)
	f.SetColWidth(sheet, colName(2), colName(8), 26)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DCE6F1"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	f.SetCellValue(sheet, "A1", fmt.Sprintf("%s, week of %s", store.Name, timeutil.FormatDate(from)))
	f.MergeCell(sheet, "A1", cell(colName(8), 1))
	f.SetCellStyle(sheet, "A1", "A1", headerStyle)

	f.SetCellValue(sheet, cell("A", 2), "Login ID")
	f.SetCellValue(sheet, cell("B", 2), "Name")
	days := make([]string, 0, 7)
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		col := colName(2 + len(days))
		f.SetCellValue(sheet, cell(col, 2), d.Format("Mon 01/02"))
		days = append(days, timeutil.FormatDate(d))
	}
	f.SetCellStyle(sheet, "A2", cell(colName(8), 2), headerStyle)

	row := 3
	for _, u := range rows {
		f.SetCellValue(sheet, cell("A", row), u.LoginID)
		f.SetCellValue(sheet, cell("B", row), u.Name)
		for i, day := range days {
			text, ok := cells[u.ID][day]
			if !ok {
				text = "-"
			}
			f.SetCellValue(sheet, cell(colName(2+i), row), text)
		}
		row++
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("write workbook failed", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("shifts_%s_%s.xlsx", store.Name, timeutil.FormatDate(from))
	return buf, filename, nil
}

// ═══════════════════════════════════════════════════════════
// Calendar — GET /shifts/calendar.ics
// ═══════════════════════════════════════════════════════════

func (s *shiftService) Calendar(ctx context.Context, userID string) ([]byte, error) {
	if _, err := s.repo.User.GetByID(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	shifts, err := s.repo.Shift.List(ctx, repository.ShiftFilter{UserID: userID, Status: model.ShiftStatusConfirmed})
	if err != nil {
		s.logger.Error("list confirmed shifts failed", zap.Error(err))
		return nil, err
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//shift-management//shifts//EN")

	now := time.Now().UTC()
	for i := range shifts {
		sh := &shifts[i]
		if sh.Pattern == nil {
			continue
		}
		start, end, ok := s.shiftBounds(sh)
		if !ok {
			continue
		}

		ev := cal.AddEvent(sh.ID + "@shift-management")
		ev.SetDtStampTime(now)
		ev.SetModifiedAt(sh.UpdatedAt)
		ev.SetStartAt(start)
		ev.SetEndAt(end)
		ev.SetSummary(sh.Pattern.Name + " shift")
		if sh.Store != nil {
			ev.SetLocation(sh.Store.Name)
		}
		if sh.Notes != "" {
			ev.SetDescription(sh.Notes)
		}
	}

	return []byte(cal.Serialize()), nil
}

// shiftBounds places the pattern times on the shift date in the business
// timezone.
func (s *shiftService) shiftBounds(sh *model.Shift) (time.Time, time.Time, bool) {
	startMin, err := timeutil.MinuteOfDay(sh.Pattern.StartTime)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	endMin, err := timeutil.MinuteOfDay(sh.Pattern.EndTime)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	y, m, d := sh.Date.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, s.loc)
	return day.Add(time.Duration(startMin) * time.Minute), day.Add(time.Duration(endMin) * time.Minute), true
}

// ── helpers ──

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
