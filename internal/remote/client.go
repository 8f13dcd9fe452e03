package remote

import (
	"bytes"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"golang.org/x/crypto/ssh"
)

// Client wraps the single persistent SSH connection to the managed host.
// It is dialed once at startup and closed once at shutdown; there is no
// reconnect logic.
type Client struct {
	conn    *ssh.Client
	address string
}

// Dial connects to host:port with password authentication. Host keys are
// not verified; the target host is operator-supplied configuration.
func Dial(host string, port int, user, password string, timeout time.Duration) (*Client, error) {
	config := &ssh.ClientConfig{
		User:            user,
		Auth:            []ssh.AuthMethod{ssh.Password(password)},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         timeout,
	}

	address := net.JoinHostPort(host, strconv.Itoa(port))
	conn, err := ssh.Dial("tcp", address, config)
	if err != nil {
		return nil, fmt.Errorf("dial ssh %s: %w", address, err)
	}
	return &Client{conn: conn, address: address}, nil
}

// Exec runs a command in a fresh session and returns stdout, stderr, and
// the exit code. A non-zero exit code with nil error means the command ran
// but failed; exit code -1 means it could not be executed at all.
func (c *Client) Exec(cmd string) (stdout, stderr []byte, exitCode int, err error) {
	session, err := c.conn.NewSession()
	if err != nil {
		return nil, nil, -1, fmt.Errorf("create ssh session: %w", err)
	}
	defer session.Close()

	var stdoutBuf, stderrBuf bytes.Buffer
	session.Stdout = &stdoutBuf
	session.Stderr = &stderrBuf

	if err := session.Run(cmd); err != nil {
		var exitErr *ssh.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitStatus()
		} else {
			return nil, nil, -1, fmt.Errorf("run remote command: %w", err)
		}
	}
	return stdoutBuf.Bytes(), stderrBuf.Bytes(), exitCode, nil
}

// Address returns the resolved host:port the client is connected to.
func (c *Client) Address() string {
	return c.address
}

// Close tears down the SSH connection.
func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}
