package volume

import (
	"errors"
	"fmt"
	"os"
	"strings"

	devmapper "github.com/anatol/devmapper.go"
	"github.com/nace/luksctl/internal/system"
)

var (
	// ErrIncorrectPassphrase is returned when no keyslot accepts the passphrase.
	ErrIncorrectPassphrase = errors.New("incorrect passphrase")
	// ErrMapperExists is returned when the target mapper node is already active.
	ErrMapperExists = errors.New("device-mapper node already exists")
)

// Runner executes external commands.
type Runner interface {
	RunOutput(name string, args ...string) (string, error)
	RunInput(input []byte, name string, args ...string) (string, error)
}

// Cryptsetup opens and closes LUKS volumes with cryptsetup(8) and checks
// device-mapper state through the kernel ioctl interface.
type Cryptsetup struct {
	runner Runner
	// dmInfo reports whether a device-mapper node exists.
	dmInfo func(name string) error
}

// NewCryptsetup creates a new cryptsetup-backed volume controller
func NewCryptsetup(runner Runner) *Cryptsetup {
	return &Cryptsetup{
		runner: runner,
		dmInfo: func(name string) error {
			_, err := devmapper.InfoByName(name)
			return err
		},
	}
}

// IsEncryptedVolume checks if a device carries a LUKS header
func (c *Cryptsetup) IsEncryptedVolume(device string) (bool, error) {
	_, err := c.runner.RunOutput("cryptsetup", "isLuks", device)
	if err == nil {
		return true, nil
	}
	var cmdErr *system.CommandError
	if errors.As(err, &cmdErr) && cmdErr.ExitCode > 0 {
		return false, nil
	}
	return false, fmt.Errorf("failed to check LUKS header on %s: %w", device, err)
}

// VolumeUUID reads the LUKS volume UUID of a device
func (c *Cryptsetup) VolumeUUID(device string) (string, error) {
	output, err := c.runner.RunOutput("cryptsetup", "luksUUID", device)
	if err != nil {
		return "", fmt.Errorf("failed to read LUKS UUID of %s: %w", device, err)
	}
	return system.ParseSingleLine(output)
}

// Unlock opens a LUKS volume as /dev/mapper/<mapperID>.
// The passphrase is fed through stdin and never appears in argv.
func (c *Cryptsetup) Unlock(device, mapperID string, passphrase *system.SecureBytes) error {
	if err := ValidateMapperName(mapperID); err != nil {
		return err
	}

	input := make([]byte, 0, passphrase.Len()+1)
	input = append(input, passphrase.Bytes()...)
	input = append(input, '\n')
	defer clear(input)

	_, err := c.runner.RunInput(input, "cryptsetup", "open", "--type", "luks", device, mapperID)
	if err != nil {
		return classifyOpenError(err)
	}
	return nil
}

// Lock closes the device-mapper node of an unlocked volume
func (c *Cryptsetup) Lock(mapperID string) error {
	if err := ValidateMapperName(mapperID); err != nil {
		return err
	}
	if _, err := c.runner.RunOutput("cryptsetup", "close", mapperID); err != nil {
		return fmt.Errorf("failed to close LUKS volume %s: %w", mapperID, err)
	}
	return nil
}

// IsActive reports whether the mapper node exists. The ioctl answer is
// authoritative; the /dev/mapper node is consulted when it is unavailable.
func (c *Cryptsetup) IsActive(mapperID string) bool {
	if c.dmInfo != nil && c.dmInfo(mapperID) == nil {
		return true
	}
	info, err := os.Stat(MapperPath(mapperID))
	return err == nil && info.Mode()&os.ModeDevice != 0
}

func classifyOpenError(err error) error {
	var cmdErr *system.CommandError
	if !errors.As(err, &cmdErr) {
		return fmt.Errorf("failed to open LUKS volume: %w", err)
	}
	stderr := strings.ToLower(cmdErr.Stderr)
	switch {
	case strings.Contains(stderr, "no key available"), strings.Contains(stderr, "wrong"):
		return ErrIncorrectPassphrase
	case strings.Contains(stderr, "already exists"), strings.Contains(stderr, "already in use"):
		return fmt.Errorf("%w: %s", ErrMapperExists, strings.TrimSpace(cmdErr.Stderr))
	default:
		return fmt.Errorf("failed to open LUKS volume: %w", err)
	}
}
