package ui

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/nace/luksctl/internal/system"
	"golang.org/x/term"
)

// MaxPassphraseLen bounds passphrases read from a terminal or stdin.
const MaxPassphraseLen = 512

var (
	// ErrEmptyPassphrase is returned when no passphrase was entered.
	ErrEmptyPassphrase = errors.New("empty passphrase")
	// ErrPassphraseTooLong is returned for input over MaxPassphraseLen.
	ErrPassphraseTooLong = errors.New("passphrase too long")
	// ErrNotTerminal is returned when prompting without a terminal.
	ErrNotTerminal = errors.New("stdin is not a terminal, use --password-stdin")
)

// PromptPassword prompts for a password without echoing. The prompt is
// printed verbatim.
func PromptPassword(prompt string) (*system.SecureBytes, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return nil, ErrNotTerminal
	}

	fmt.Fprint(os.Stderr, prompt)
	password, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr) // New line after password input
	if err != nil {
		return nil, err
	}
	return checkPassphrase(system.NewSecureBytes(password))
}

// ReadPassword reads one line from r as the passphrase, for automation.
func ReadPassword(r io.Reader) (*system.SecureBytes, error) {
	br := bufio.NewReaderSize(r, MaxPassphraseLen+2)
	line, err := br.ReadSlice('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		if errors.Is(err, bufio.ErrBufferFull) {
			clear(line)
			return nil, ErrPassphraseTooLong
		}
		return nil, fmt.Errorf("failed to read passphrase: %w", err)
	}

	buf := make([]byte, len(line))
	copy(buf, line)
	clear(line)

	pass := system.NewSecureBytes(buf)
	pass.TrimNewline()
	return checkPassphrase(pass)
}

func checkPassphrase(pass *system.SecureBytes) (*system.SecureBytes, error) {
	switch {
	case pass.Len() == 0:
		pass.Zeroize()
		return nil, ErrEmptyPassphrase
	case pass.Len() > MaxPassphraseLen:
		pass.Zeroize()
		return nil, ErrPassphraseTooLong
	}
	return pass, nil
}
