package main

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"golang.org/x/crypto/ssh/terminal"

	"github.com/davidus-sk/Yaesu-Pi/cat"
)

type statusLogData struct {
	line string

	frequency string
	mode      string
	ptt       bool
	signal    string
	power     string
	swrHigh   bool
	squelched bool
	centered  bool
	ctcss     bool
	split     bool
	state     cat.State

	startTime time.Time
}

type statusLogStruct struct {
	mutex    sync.Mutex
	realtime bool

	preGenerated struct {
		rxColor    *color.Color
		splitColor *color.Color

		stateStr struct {
			tx           string
			unresponsive string
		}

		swr   string
		sql   string
		ctcss string
	}

	data *statusLogData
}

type termAspects struct {
	cols      int
	rows      int
	eraseLine string
}

// narrower terminals get the status line without the uptime
const uptimeMinCols = 100

var statusLog statusLogStruct
var termDetail = termAspects{
	cols:      0,
	rows:      0,
	eraseLine: fmt.Sprintf("%c[2K", 0x1b),
}

// copy the fields of a status snapshot into the status log data structure;
// the TX flag comes from the latest poll, the snapshot may hold a stale one
func (s *statusLogStruct) reportStatus(st cat.Status, state cat.State, transmitting bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.data == nil {
		return
	}
	s.data.state = state
	if v, ok := st[cat.FieldFrequency]; ok {
		s.data.frequency = v
	}
	if v, ok := st[cat.FieldMode]; ok {
		s.data.mode = v
	}
	if v, ok := st[cat.FieldRxSignal]; ok {
		s.data.signal = "S" + v
	}
	if v, ok := st[cat.FieldTxPower]; ok {
		s.data.power = "PO" + v
	}
	s.data.ptt = transmitting
	s.data.swrHigh = st[cat.FieldTxSWRHigh] == "true"
	s.data.split = st[cat.FieldTxSplit] == "true"
	s.data.squelched = st[cat.FieldRxSquelched] == "true"
	s.data.centered = st[cat.FieldRxCentered] == "true"
	s.data.ctcss = st[cat.FieldRxCTCSSDCS] == "true"
}

// clears the entire line the cursor is located on
func (s *statusLogStruct) clearStatusLine() {
	fmt.Print(termDetail.eraseLine)
}

// print the status line in place when on a terminal, otherwise through the log
func (s *statusLogStruct) print() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.realtime {
		s.clearStatusLine()
		fmt.Print(s.data.line + "\r")
	} else {
		log.PrintStatusLog(s.data.line)
	}
}

// use whitespace padding on the right-hand side of the string for consistent formatting
func (s *statusLogStruct) padRight(str string, length int) string {
	if !s.realtime {
		return str
	}
	if length-len(str) > 0 {
		str += strings.Repeat(" ", length-len(str))
	}
	return str
}

// regenerate the status line from the current values
func (s *statusLogStruct) update() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	var (
		stateStr string
		modeStr  string
		splitStr string
		flagsStr string
		powerStr string
	)

	switch {
	case s.data.state == cat.StateUnresponsive:
		stateStr = s.preGenerated.stateStr.unresponsive
	case s.data.ptt:
		stateStr = s.preGenerated.stateStr.tx
		if s.data.swrHigh {
			flagsStr += " " + s.preGenerated.swr
		}
		if s.data.power != "" {
			powerStr = " " + s.data.power
		}
	default:
		stateStr = s.preGenerated.rxColor.Sprintf(" %v ", s.padRight(s.data.signal, 4))
		if s.data.squelched {
			flagsStr += " " + s.preGenerated.sql
		}
		if s.data.ctcss {
			flagsStr += " " + s.preGenerated.ctcss
		}
		if !s.data.centered && s.data.signal != "" {
			flagsStr += " OFFC"
		}
	}

	if s.data.mode != "" {
		modeStr = " " + s.padRight(s.data.mode, 3)
	}
	if s.data.split {
		splitStr = " " + s.preGenerated.splitColor.Sprint("SPLIT")
	}

	freq := s.data.frequency
	if freq == "" {
		freq = "?"
	}
	s.data.line = fmt.Sprint(stateStr, " ", freq, modeStr, splitStr, powerStr, flagsStr)

	if s.realtime {
		t := time.Now().Format("2006-01-02T15:04:05 Z0700")
		s.data.line = fmt.Sprint(t, " ", s.data.line)
	}
	if !s.realtime || termDetail.cols >= uptimeMinCols {
		s.data.line += fmt.Sprint("  - uptime: ", time.Since(s.data.startTime).Round(time.Second))
	}
}

func (s *statusLogStruct) isRealtime() bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.data != nil && s.realtime
}

// set initial values and work out if the status line can be redrawn in place
func (s *statusLogStruct) start() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.realtime = !quietLog && isatty.IsTerminal(os.Stdout.Fd())

	cols, rows, err := terminal.GetSize(int(os.Stdout.Fd()))
	if err == nil {
		termDetail.cols = cols
		termDetail.rows = rows
	} else {
		termDetail.cols = 120
		termDetail.rows = 20
	}

	s.preGenerate()
	s.data = &statusLogData{
		startTime: time.Now(),
		centered:  true,
	}
}

func (s *statusLogStruct) preGenerate() {
	s.preGenerated.rxColor = color.New(color.FgHiWhite)
	s.preGenerated.rxColor.Add(color.BgGreen)

	c := color.New(color.FgHiWhite, color.BlinkRapid)
	c.Add(color.BgRed)
	s.preGenerated.stateStr.tx = c.Sprint("  TX  ")

	c = color.New(color.FgHiWhite)
	c.Add(color.BgYellow)
	s.preGenerated.stateStr.unresponsive = c.Sprint(" ---- ")

	c = color.New(color.FgHiWhite)
	c.Add(color.BgRed)
	s.preGenerated.swr = c.Sprint(" SWR ")

	s.preGenerated.sql = color.New(color.FgHiBlack).Sprint("SQL")
	s.preGenerated.ctcss = color.New(color.FgHiCyan).Sprint("TONE")
	s.preGenerated.splitColor = color.New(color.FgHiMagenta)
}

// clear the status line from the terminal
func (s *statusLogStruct) stop() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.data == nil {
		return
	}
	if s.realtime {
		s.clearStatusLine()
		fmt.Println()
	}
	s.data = nil
}
