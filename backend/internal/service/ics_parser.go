package service

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
)

// ── ICS 解析器 ──────────────────────────────────────────────
//
// 职责：将标准 iCalendar (RFC 5545) 内容解析为计划活动列表，
// 供"从日历批量创建预约报警"使用。
//
// 设计决策：
//   - 每个 VEVENT 对应一次计划活动，DTSTART 即预约触发时间
//   - SUMMARY 作为同行人/活动描述，LOCATION 作为活动地点
//   - 无 DTSTART 的事件跳过；重复事件(RRULE)只取首次发生
// ─────────────────────────────────────────────────────────────

const icsMaxFileSize = 5 * 1024 * 1024 // 5MB

// ErrInvalidICS 上传内容不是合法的 iCalendar 数据
var ErrInvalidICS = errors.New("ICS 文件解析失败")

// parsedEvent ICS 解析中间结构
type parsedEvent struct {
	Summary     string
	Location    string
	Description string
	Start       time.Time
}

// parseICSEvents 解析 ICS 数据流，按开始时间升序返回事件
func parseICSEvents(r io.Reader) ([]parsedEvent, error) {
	cal, err := ics.ParseCalendar(io.LimitReader(r, icsMaxFileSize))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidICS, err)
	}

	var events []parsedEvent
	for _, comp := range cal.Events() {
		start, err := comp.GetStartAt()
		if err != nil {
			continue // 无 DTSTART 的事件跳过
		}

		ev := parsedEvent{Start: start}
		if p := comp.GetProperty(ics.ComponentPropertySummary); p != nil {
			ev.Summary = strings.TrimSpace(p.Value)
		}
		if p := comp.GetProperty(ics.ComponentPropertyLocation); p != nil {
			ev.Location = strings.TrimSpace(p.Value)
		}
		if p := comp.GetProperty(ics.ComponentPropertyDescription); p != nil {
			ev.Description = strings.TrimSpace(p.Value)
		}

		// 地点与描述为空时用占位文本，保证后续创建通过字段校验
		if ev.Location == "" {
			ev.Location = "（日历未提供地点）"
		}
		if ev.Summary == "" {
			ev.Summary = "（日历未提供说明）"
		}

		events = append(events, ev)
	}

	sort.Slice(events, func(i, j int) bool { return events[i].Start.Before(events[j].Start) })
	return events, nil
}
