// Command cpurunner drives the core headlessly against blargg-style test
// ROMs, watching their serial output for a pass/fail marker instead of
// rendering anything.
package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/tindermere/gbcore/internal/core"
	"github.com/urfave/cli"
)

// serialRing keeps the last N bytes written to serial for a failure dump,
// alongside the full accumulated buffer used for pattern matching.
type serialRing struct {
	buf  bytes.Buffer
	ring []byte
	idx  int
	fill int
}

func newSerialRing(n int) *serialRing {
	if n < 256 {
		n = 256
	}
	return &serialRing{ring: make([]byte, n)}
}

func (s *serialRing) Write(p []byte) (int, error) {
	s.buf.Write(p)
	for _, b := range p {
		s.ring[s.idx] = b
		s.idx = (s.idx + 1) % len(s.ring)
		if s.fill < len(s.ring) {
			s.fill++
		}
	}
	return len(p), nil
}

func (s *serialRing) tail() string {
	start := (s.idx - s.fill + len(s.ring)) % len(s.ring)
	out := make([]byte, s.fill)
	for i := 0; i < s.fill; i++ {
		out[i] = s.ring[(start+i)%len(s.ring)]
	}
	return string(out)
}

func loadCore(romPath, bootPath string) (*core.Core, *serialRing, error) {
	rom, err := os.ReadFile(romPath)
	if err != nil {
		return nil, nil, fmt.Errorf("read rom: %w", err)
	}
	var boot []byte
	if bootPath != "" {
		if boot, err = os.ReadFile(bootPath); err != nil {
			return nil, nil, fmt.Errorf("read bootrom: %w", err)
		}
	}
	ser := newSerialRing(8192)
	w := io.MultiWriter(os.Stdout, ser)
	c, err := core.New(rom, nil, core.Config{Variant: core.VariantDMG, SerialWriter: w})
	if err != nil {
		return nil, nil, err
	}
	if len(boot) >= 0x100 {
		c.SetBootROM(boot)
	}
	return c, ser, nil
}

var failRe = regexp.MustCompile(`(?i)failed\s+(\d+)\s+tests?`)

func runLoop(c *core.Core, ser *serialRing, frames int, timeout time.Duration, wantSubstr string) error {
	start := time.Now()
	var deadline time.Time
	if timeout > 0 {
		deadline = start.Add(timeout)
	}
	for i := 0; i < frames; i++ {
		if r := c.RunOneFrame(); r.Fatal {
			return fmt.Errorf("core hit a fatal condition: %s", r.Message)
		}
		s := ser.buf.String()
		if wantSubstr != "" && strings.Contains(strings.ToLower(s), strings.ToLower(wantSubstr)) {
			fmt.Printf("\ndetected %q in serial output after %d frames, %s\n", wantSubstr, i+1, time.Since(start).Truncate(time.Millisecond))
			return nil
		}
		if strings.Contains(strings.ToLower(s), "passed") {
			fmt.Printf("\nPASS after %d frames, %s\n", i+1, time.Since(start).Truncate(time.Millisecond))
			return nil
		}
		if m := failRe.FindString(s); m != "" {
			fmt.Printf("\nFAIL (%s) after %d frames, %s\n--- recent serial ---\n%s\n", m, i+1, time.Since(start).Truncate(time.Millisecond), ser.tail())
			return fmt.Errorf("test ROM reported failure: %s", m)
		}
		if !deadline.IsZero() && time.Now().After(deadline) {
			return fmt.Errorf("timeout after %s", time.Since(start).Truncate(time.Millisecond))
		}
	}
	return fmt.Errorf("ran %d frames without a pass/fail marker", frames)
}

func main() {
	app := cli.NewApp()
	app.Name = "cpurunner"
	app.Usage = "run Game Boy test ROMs headlessly against the core"
	app.Commands = []cli.Command{
		runCommand(),
		untilCommand(),
		autoCommand(),
	}
	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func romFlags() []cli.Flag {
	return []cli.Flag{
		cli.StringFlag{Name: "rom", Usage: "path to ROM (.gb)"},
		cli.StringFlag{Name: "bootrom", Usage: "optional boot ROM"},
		cli.IntFlag{Name: "frames", Value: 3600, Usage: "max frames to run"},
		cli.DurationFlag{Name: "timeout", Usage: "wall-clock timeout, 0 disables"},
	}
}

func requireROM(ctx *cli.Context) (string, error) {
	rom := ctx.String("rom")
	if rom == "" {
		return "", errors.New("-rom is required")
	}
	return rom, nil
}

// runCommand just runs the ROM for -frames frames with no pass/fail
// detection, for ROMs that don't report over serial at all.
func runCommand() cli.Command {
	return cli.Command{
		Name:  "run",
		Usage: "run a ROM for a fixed number of frames",
		Flags: romFlags(),
		Action: func(ctx *cli.Context) error {
			rom, err := requireROM(ctx)
			if err != nil {
				return err
			}
			c, _, err := loadCore(rom, ctx.String("bootrom"))
			if err != nil {
				return err
			}
			return runLoopNoMarker(c, ctx.Int("frames"), ctx.Duration("timeout"))
		},
	}
}

func runLoopNoMarker(c *core.Core, frames int, timeout time.Duration) error {
	start := time.Now()
	var deadline time.Time
	if timeout > 0 {
		deadline = start.Add(timeout)
	}
	for i := 0; i < frames; i++ {
		if r := c.RunOneFrame(); r.Fatal {
			return fmt.Errorf("core hit a fatal condition: %s", r.Message)
		}
		if !deadline.IsZero() && time.Now().After(deadline) {
			return fmt.Errorf("timeout after %s", time.Since(start).Truncate(time.Millisecond))
		}
	}
	fmt.Printf("ran %d frames, %s\n", frames, time.Since(start).Truncate(time.Millisecond))
	return nil
}

// untilCommand runs until a caller-supplied substring appears in serial; it
// also stops early if blargg's "passed" or "failed N tests" marker shows up.
func untilCommand() cli.Command {
	flags := append(romFlags(), cli.StringFlag{Name: "substr", Value: "Passed", Usage: "substring to wait for in serial output"})
	return cli.Command{
		Name:  "until",
		Usage: "run until a substring appears in serial output",
		Flags: flags,
		Action: func(ctx *cli.Context) error {
			rom, err := requireROM(ctx)
			if err != nil {
				return err
			}
			c, ser, err := loadCore(rom, ctx.String("bootrom"))
			if err != nil {
				return err
			}
			return runLoop(c, ser, ctx.Int("frames"), ctx.Duration("timeout"), ctx.String("substr"))
		},
	}
}

// autoCommand auto-detects blargg's "Passed"/"Failed N tests" convention.
func autoCommand() cli.Command {
	return cli.Command{
		Name:  "auto",
		Usage: "auto-detect blargg-style Passed/Failed markers",
		Flags: romFlags(),
		Action: func(ctx *cli.Context) error {
			rom, err := requireROM(ctx)
			if err != nil {
				return err
			}
			c, ser, err := loadCore(rom, ctx.String("bootrom"))
			if err != nil {
				return err
			}
			return runLoop(c, ser, ctx.Int("frames"), ctx.Duration("timeout"), "")
		},
	}
}
