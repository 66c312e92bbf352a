package main

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pborman/getopt"

	"github.com/davidus-sk/Yaesu-Pi/cat"
)

const maxFrequency = 1000 // MHz, exclusive

var (
	verboseLog   bool
	quietLog     bool
	devicePath   string
	baudRate     int
	replyTimeout time.Duration
	debugPackets bool
	emulate      bool

	setLock      *bool
	setPTT       *bool
	setSplit     *bool
	setClar      *bool
	toggleVFO    bool
	setFrequency float64 // 0 = unset
	setMode      string
	showStatus   bool
	watchEvery   time.Duration // 0 = off
)

func parseArgs() {
	env, err := loadEnvDefaults()
	if err != nil {
		fmt.Println("invalid environment:", err)
		os.Exit(exitUsage)
	}

	h := getopt.BoolLong("help", 'h', "display help")
	v := getopt.BoolLong("verbose", 'v', "Enable verbose (debug) logging")
	q := getopt.BoolLong("quiet", 'q', "Disable logging")
	d := getopt.StringLong("device", 'd', env.Device, "Serial device of the transceiver")
	b := getopt.IntLong("baud", 'b', env.Baud, "Serial speed")
	timeoutMs := env.ReplyTimeout / time.Millisecond
	if timeoutMs > math.MaxUint16 {
		timeoutMs = math.MaxUint16
	}
	t := getopt.Uint16Long("timeout", 't', uint16(timeoutMs), "Reply timeout in milliseconds")
	l := getopt.StringLong("lock", 'l', "", "Front panel lock: on|off")
	p := getopt.StringLong("ptt", 'p', "", "Push-to-talk: on|off")
	sp := getopt.StringLong("split", 'S', "", "Split operation: on|off")
	c := getopt.StringLong("clar", 'c', "", "Clarifier: on|off")
	x := getopt.BoolLong("toggle-vfo", 'x', "Toggle between VFO A and B")
	f := getopt.StringLong("frequency", 'f', "", "Set frequency in MHz, e.g. 14.255")
	m := getopt.StringLong("mode", 'm', "", "Set mode: "+strings.Join(cat.ModeNames(), ", "))
	s := getopt.BoolLong("status", 's', "Query status and print it as JSON")
	w := getopt.Uint16Long("watch", 'w', 0, "Poll status every N milliseconds until interrupted")
	e := getopt.BoolLong("emulate", 'e', "Talk to a simulated transceiver on a pseudo-terminal")
	dp := getopt.BoolLong("debug-packets", 'D', "Show CAT packets for debugging")

	getopt.Parse()

	if *h || *d == "" || (*q && *v) {
		fmt.Println(getAboutStr())
		getopt.Usage()
		os.Exit(exitUsage)
	}

	verboseLog = *v
	quietLog = *q
	devicePath = *d
	baudRate = *b
	replyTimeout = time.Duration(*t) * time.Millisecond
	if replyTimeout == 0 {
		replyTimeout = cat.DefaultReplyTimeout
	}
	debugPackets = *dp
	emulate = *e
	toggleVFO = *x
	showStatus = *s
	watchEvery = time.Duration(*w) * time.Millisecond

	for _, sw := range []struct {
		name  string
		value string
		dst   **bool
	}{
		{"lock", *l, &setLock},
		{"ptt", *p, &setPTT},
		{"split", *sp, &setSplit},
		{"clar", *c, &setClar},
	} {
		if *sw.dst, err = parseSwitch(sw.name, sw.value); err != nil {
			fmt.Println(err)
			os.Exit(exitUsage)
		}
	}

	if *f != "" {
		if setFrequency, err = parseFrequency(*f); err != nil {
			fmt.Println(err)
			os.Exit(exitUsage)
		}
	}

	if *m != "" {
		if _, err := cat.LookupMode(*m); err != nil {
			fmt.Println(err)
			os.Exit(exitUsage)
		}
		setMode = *m
	}
}

// parseSwitch turns an on/off argument into a setting. An empty value means
// the switch was not given.
func parseSwitch(name, value string) (*bool, error) {
	var enabled bool
	switch strings.ToLower(value) {
	case "":
		return nil, nil
	case "on", "1", "true":
		enabled = true
	case "off", "0", "false":
		enabled = false
	default:
		return nil, fmt.Errorf("invalid %s value %q: expected on or off", name, value)
	}
	return &enabled, nil
}

func parseFrequency(s string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid frequency %q: can't parse", s)
	}
	if f <= 0 || f >= maxFrequency {
		return 0, fmt.Errorf("invalid frequency %q: must be above 0 and below %d MHz", s, maxFrequency)
	}
	return f, nil
}

// checkDevicePath makes sure the device exists and is a character device.
// Windows COM ports can't be stat'ed and are passed through.
func checkDevicePath(path string) error {
	if strings.HasPrefix(strings.ToUpper(path), "COM") {
		return nil
	}
	fi, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("%w: %v", cat.ErrDeviceUnavailable, err)
	}
	if fi.Mode()&os.ModeCharDevice == 0 {
		return fmt.Errorf("%w: %s is not a character device", cat.ErrDeviceUnavailable, path)
	}
	return nil
}
