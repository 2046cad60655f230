// Package agent collects the local security posture of a machine and sends it
// to the syshealth server.
package agent

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net"
	"os"
	"os/exec"
	"regexp"
	"runtime"
	"strconv"
	"strings"
)

const (
	goosDarwin  = "darwin"
	goosLinux   = "linux"
	goosWindows = "windows"

	unknownMachineName = "unknown-machine"
	osReleasePath      = "/etc/os-release"
	xprotectPath       = "/System/Library/CoreServices/XProtect.app"
)

// Checks mirrors the check-set understood by the server. A nil
// InactivitySleepMinutes means the timeout could not be determined or is
// disabled, which the server counts as an issue.
type Checks struct {
	DiskEncrypted          bool `json:"disk_encrypted"`
	OSUpToDate             bool `json:"os_up_to_date"`
	AntivirusPresent       bool `json:"antivirus_present"`
	InactivitySleepMinutes *int `json:"inactivity_sleep_minutes,omitempty"`
}

type Report struct {
	MachineID   string `json:"machine_id"`
	MachineName string `json:"machine_name"`
	OS          string `json:"os"`
	OSVersion   string `json:"os_version"`
	Checks      Checks `json:"checks"`
}

// CommandRunner runs a command and returns its combined output.
type CommandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

type Collector struct {
	goos       string
	run        CommandRunner
	readFile   func(string) ([]byte, error)
	stat       func(string) (os.FileInfo, error)
	lookPath   func(string) (string, error)
	hostname   func() (string, error)
	interfaces func() ([]net.Interface, error)
}

func NewCollector() *Collector {
	return &Collector{
		goos:       runtime.GOOS,
		run:        execRunner,
		readFile:   os.ReadFile,
		stat:       os.Stat,
		lookPath:   exec.LookPath,
		hostname:   os.Hostname,
		interfaces: net.Interfaces,
	}
}

// Collect gathers a full report. Individual probes that fail count as failing
// checks rather than aborting the report.
func (c *Collector) Collect(ctx context.Context) Report {
	osName, osVersion := c.osNameAndVersion(ctx)
	return Report{
		MachineID:   c.machineID(),
		MachineName: c.machineName(),
		OS:          osName,
		OSVersion:   osVersion,
		Checks: Checks{
			DiskEncrypted:          c.diskEncrypted(ctx),
			OSUpToDate:             c.osUpToDate(ctx),
			AntivirusPresent:       c.antivirusPresent(ctx),
			InactivitySleepMinutes: c.sleepMinutes(ctx),
		},
	}
}

// machineID prefers the first hardware address and falls back to the hostname.
func (c *Collector) machineID() string {
	ifaces, err := c.interfaces()
	if err == nil {
		for _, iface := range ifaces {
			if iface.Flags&net.FlagLoopback != 0 {
				continue
			}
			if len(iface.HardwareAddr) > 0 {
				return iface.HardwareAddr.String()
			}
		}
	}
	name, _ := c.hostname()
	return name
}

func (c *Collector) machineName() string {
	name, err := c.hostname()
	if err != nil || name == "" {
		return unknownMachineName
	}
	return name
}

func (c *Collector) output(ctx context.Context, name string, args ...string) []byte {
	out, err := c.run(ctx, name, args...)
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			slog.Debug("Probe command failed", "command", name, "error", err)
		}
	}
	return out
}

func (c *Collector) diskEncrypted(ctx context.Context) bool {
	switch c.goos {
	case goosDarwin:
		return bytes.Contains(c.output(ctx, "fdesetup", "status"), []byte("FileVault is On"))
	case goosWindows:
		return bytes.Contains(c.output(ctx, "manage-bde", "-status", "C:"), []byte("Protection On"))
	case goosLinux:
		source := strings.TrimSpace(string(c.output(ctx, "findmnt", "-no", "SOURCE", "/")))
		if source == "" {
			return false
		}
		return hasCryptLayer(c.output(ctx, "lsblk", "-nso", "TYPE", source))
	}
	return false
}

func (c *Collector) osUpToDate(ctx context.Context) bool {
	switch c.goos {
	case goosDarwin:
		return bytes.Contains(c.output(ctx, "softwareupdate", "-l"), []byte("No new software available"))
	case goosWindows:
		out := c.output(ctx, "powershell", "-NoProfile", "-Command",
			"(New-Object -ComObject Microsoft.Update.Session).CreateUpdateSearcher().Search('IsInstalled=0').Updates.Count")
		return strings.TrimSpace(string(out)) == "0"
	case goosLinux:
		if _, err := c.lookPath("apt"); err != nil {
			return false
		}
		n, ok := countUpgradable(c.output(ctx, "apt", "list", "--upgradable"))
		return ok && n == 0
	}
	return false
}

func (c *Collector) antivirusPresent(ctx context.Context) bool {
	switch c.goos {
	case goosDarwin:
		_, err := c.stat(xprotectPath)
		return err == nil
	case goosWindows:
		out := c.output(ctx, "powershell", "-NoProfile", "-Command",
			"Get-MpComputerStatus | Select-Object -ExpandProperty AMServiceEnabled")
		return strings.TrimSpace(string(out)) == "True"
	case goosLinux:
		_, err := c.lookPath("clamscan")
		return err == nil
	}
	return false
}

func (c *Collector) sleepMinutes(ctx context.Context) *int {
	switch c.goos {
	case goosDarwin:
		return parsePmsetSleep(c.output(ctx, "pmset", "-g", "custom"))
	case goosWindows:
		out := c.output(ctx, "powershell", "-NoProfile", "-Command",
			`(Get-ItemProperty -Path 'HKCU:\Control Panel\Desktop').ScreenSaveTimeOut`)
		return secondsToMinutes(strings.TrimSpace(string(out)))
	case goosLinux:
		return parseGsettingsIdleDelay(c.output(ctx, "gsettings", "get", "org.gnome.desktop.session", "idle-delay"))
	}
	return nil
}

func (c *Collector) osNameAndVersion(ctx context.Context) (string, string) {
	switch c.goos {
	case goosDarwin:
		name := strings.TrimSpace(string(c.output(ctx, "sw_vers", "-productName")))
		version := strings.TrimSpace(string(c.output(ctx, "sw_vers", "-productVersion")))
		return name, version
	case goosLinux:
		data, err := c.readFile(osReleasePath)
		if err != nil {
			return "Linux", ""
		}
		return splitNameVersion(parseOSRelease(data))
	case goosWindows:
		out := c.output(ctx, "powershell", "-NoProfile", "-Command",
			"(Get-CimInstance Win32_OperatingSystem).Caption")
		caption := strings.TrimSpace(string(out))
		if caption == "" {
			return "Windows", ""
		}
		return splitNameVersion(caption)
	}
	return "Unknown", ""
}

func hasCryptLayer(lsblkTypes []byte) bool {
	for _, line := range strings.Split(string(lsblkTypes), "\n") {
		if strings.TrimSpace(line) == "crypt" {
			return true
		}
	}
	return false
}

// countUpgradable counts package lines in `apt list --upgradable` output.
func countUpgradable(out []byte) (int, bool) {
	if len(bytes.TrimSpace(out)) == 0 {
		return 0, false
	}
	n := 0
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "Listing") || strings.HasPrefix(line, "WARNING") {
			continue
		}
		if strings.Contains(line, "[upgradable from") {
			n++
		}
	}
	return n, true
}

var pmsetSleepRe = regexp.MustCompile(`(?m)^\s*sleep\s+(\d+)`)

// parsePmsetSleep returns the longest system sleep timer across power
// sources. A timer of 0 means sleep is disabled.
func parsePmsetSleep(out []byte) *int {
	matches := pmsetSleepRe.FindAllSubmatch(out, -1)
	if len(matches) == 0 {
		return nil
	}
	longest := -1
	for _, m := range matches {
		n, err := strconv.Atoi(string(m[1]))
		if err != nil {
			continue
		}
		if n == 0 {
			return nil
		}
		if n > longest {
			longest = n
		}
	}
	if longest < 0 {
		return nil
	}
	return &longest
}

// parseGsettingsIdleDelay parses output such as "uint32 300".
func parseGsettingsIdleDelay(out []byte) *int {
	fields := strings.Fields(string(out))
	if len(fields) == 0 {
		return nil
	}
	return secondsToMinutes(fields[len(fields)-1])
}

func secondsToMinutes(s string) *int {
	secs, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || secs <= 0 {
		return nil
	}
	minutes := (secs + 59) / 60
	return &minutes
}

// parseOSRelease returns PRETTY_NAME from an os-release file.
func parseOSRelease(data []byte) string {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		key, value, ok := strings.Cut(scanner.Text(), "=")
		if !ok || key != "PRETTY_NAME" {
			continue
		}
		return strings.Trim(value, `"'`)
	}
	return ""
}

func splitNameVersion(full string) (string, string) {
	full = strings.TrimSpace(full)
	if full == "" {
		return "Unknown", ""
	}
	name, version, ok := strings.Cut(full, " ")
	if !ok {
		return full, ""
	}
	return name, strings.TrimSpace(version)
}
