package agent

import (
	"context"
	"errors"
	"net"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRunner map[string]string

func (f fakeRunner) run(_ context.Context, name string, args ...string) ([]byte, error) {
	key := strings.Join(append([]string{name}, args...), " ")
	out, ok := f[key]
	if !ok {
		return nil, errors.New("not found: " + key)
	}
	return []byte(out), nil
}

func notFound(string) (string, error) { return "", errors.New("not found") }

func fakeCollector(goos string, runner fakeRunner) *Collector {
	return &Collector{
		goos:     goos,
		run:      runner.run,
		readFile: func(string) ([]byte, error) { return nil, os.ErrNotExist },
		stat:     func(string) (os.FileInfo, error) { return nil, os.ErrNotExist },
		lookPath: notFound,
		hostname: func() (string, error) { return "host-1", nil },
		interfaces: func() ([]net.Interface, error) {
			return []net.Interface{
				{Name: "lo", Flags: net.FlagLoopback},
				{Name: "eth0", HardwareAddr: net.HardwareAddr{0x02, 0x42, 0xac, 0x11, 0x00, 0x02}},
			}, nil
		},
	}
}

func TestCollectLinux(t *testing.T) {
	c := fakeCollector(goosLinux, fakeRunner{
		"findmnt -no SOURCE /":                               "/dev/mapper/root\n",
		"lsblk -nso TYPE /dev/mapper/root":                   "crypt\npart\ndisk\n",
		"apt list --upgradable":                              "Listing... Done\n",
		"gsettings get org.gnome.desktop.session idle-delay": "uint32 300\n",
	})
	c.readFile = func(string) ([]byte, error) {
		return []byte("NAME=\"Ubuntu\"\nPRETTY_NAME=\"Ubuntu 22.04.4 LTS\"\n"), nil
	}
	c.lookPath = func(name string) (string, error) {
		if name == "apt" || name == "clamscan" {
			return "/usr/bin/" + name, nil
		}
		return "", errors.New("not found")
	}

	r := c.Collect(context.Background())
	assert.Equal(t, "02:42:ac:11:00:02", r.MachineID)
	assert.Equal(t, "host-1", r.MachineName)
	assert.Equal(t, "Ubuntu", r.OS)
	assert.Equal(t, "22.04.4 LTS", r.OSVersion)
	assert.True(t, r.Checks.DiskEncrypted)
	assert.True(t, r.Checks.OSUpToDate)
	assert.True(t, r.Checks.AntivirusPresent)
	require.NotNil(t, r.Checks.InactivitySleepMinutes)
	assert.Equal(t, 5, *r.Checks.InactivitySleepMinutes)
}

func TestCollectLinuxFailingProbes(t *testing.T) {
	c := fakeCollector(goosLinux, fakeRunner{
		"findmnt -no SOURCE /":                               "/dev/sda1\n",
		"lsblk -nso TYPE /dev/sda1":                          "part\ndisk\n",
		"gsettings get org.gnome.desktop.session idle-delay": "uint32 0\n",
	})

	r := c.Collect(context.Background())
	assert.Equal(t, "Linux", r.OS)
	assert.False(t, r.Checks.DiskEncrypted)
	assert.False(t, r.Checks.OSUpToDate)
	assert.False(t, r.Checks.AntivirusPresent)
	assert.Nil(t, r.Checks.InactivitySleepMinutes)
}

func TestCollectDarwin(t *testing.T) {
	c := fakeCollector(goosDarwin, fakeRunner{
		"fdesetup status":         "FileVault is On.\n",
		"softwareupdate -l":       "Software Update Tool\n\nNo new software available.\n",
		"pmset -g custom":         "Battery Power:\n sleep                1\nAC Power:\n sleep                10\n",
		"sw_vers -productName":    "macOS\n",
		"sw_vers -productVersion": "14.4.1\n",
	})
	c.stat = func(string) (os.FileInfo, error) { return nil, nil }

	r := c.Collect(context.Background())
	assert.Equal(t, "macOS", r.OS)
	assert.Equal(t, "14.4.1", r.OSVersion)
	assert.True(t, r.Checks.DiskEncrypted)
	assert.True(t, r.Checks.OSUpToDate)
	assert.True(t, r.Checks.AntivirusPresent)
	require.NotNil(t, r.Checks.InactivitySleepMinutes)
	assert.Equal(t, 10, *r.Checks.InactivitySleepMinutes)
}

func TestMachineIDFallsBackToHostname(t *testing.T) {
	c := fakeCollector(goosLinux, fakeRunner{})
	c.interfaces = func() ([]net.Interface, error) { return nil, errors.New("no interfaces") }
	assert.Equal(t, "host-1", c.machineID())

	c.hostname = func() (string, error) { return "", errors.New("no hostname") }
	assert.Equal(t, unknownMachineName, c.machineName())
}

func TestCountUpgradable(t *testing.T) {
	out := "Listing... Done\n" +
		"curl/jammy-updates 7.81.0-1ubuntu1.16 amd64 [upgradable from: 7.81.0-1ubuntu1.15]\n" +
		"openssl/jammy-updates 3.0.2-0ubuntu1.15 amd64 [upgradable from: 3.0.2-0ubuntu1.14]\n"
	n, ok := countUpgradable([]byte(out))
	assert.True(t, ok)
	assert.Equal(t, 2, n)

	_, ok = countUpgradable(nil)
	assert.False(t, ok)
}

func TestParsePmsetSleep(t *testing.T) {
	got := parsePmsetSleep([]byte(" sleep 3\n displaysleep 2\n"))
	require.NotNil(t, got)
	assert.Equal(t, 3, *got)

	assert.Nil(t, parsePmsetSleep([]byte(" sleep 0 (sleep prevented by coreaudiod)\n")))
	assert.Nil(t, parsePmsetSleep([]byte("garbage")))
}

func TestSecondsToMinutes(t *testing.T) {
	tests := []struct {
		in   string
		want *int
	}{
		{"300", intPtr(5)},
		{"301", intPtr(6)},
		{"59", intPtr(1)},
		{"0", nil},
		{"-5", nil},
		{"abc", nil},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, secondsToMinutes(tt.in))
		})
	}
}

func TestParseOSRelease(t *testing.T) {
	assert.Equal(t, "Debian GNU/Linux 12 (bookworm)", parseOSRelease([]byte("PRETTY_NAME=\"Debian GNU/Linux 12 (bookworm)\"\nID=debian\n")))
	assert.Empty(t, parseOSRelease([]byte("ID=arch\n")))

	name, version := splitNameVersion("Fedora")
	assert.Equal(t, "Fedora", name)
	assert.Empty(t, version)
}

func intPtr(n int) *int { return &n }
