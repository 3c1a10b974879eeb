// Package rcon implements the Source RCON protocol used by the dedicated
// server for remote administration.
package rcon

import (
	"bufio"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"
)

// Packet types on the wire. The server reuses 2 for both exec commands and
// auth responses; direction disambiguates.
const (
	packetTypeAuth         int32 = 3
	packetTypeAuthResponse int32 = 2
	packetTypeExecCommand  int32 = 2
	packetTypeResponse     int32 = 0
)

const (
	initialPacketID = 1
	// length + id + type fields are 4 bytes each, body ends with two nulls
	packetHeaderSize = 10
	maxBodySize      = 4096
)

var (
	ErrAuthFailed     = errors.New("rcon: authentication failed")
	ErrCommandTooLong = errors.New("rcon: command exceeds the maximum length")
)

type packet struct {
	id    int32
	ptype int32
	body  string
}

// Connection is an authenticated RCON session. Methods are safe for
// concurrent use; commands are serialized over the single TCP stream.
type Connection struct {
	conn         net.Conn
	reader       *bufio.Reader
	nextPacketID int32
	mutex        sync.Mutex
}

// Connect dials the server and authenticates with the given password.
func Connect(ctx context.Context, address, password string) (*Connection, error) {
	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "tcp", address)
	if err != nil {
		return nil, fmt.Errorf("rcon: failed to connect to %s: %w", address, err)
	}

	c := &Connection{
		conn:         conn,
		reader:       bufio.NewReader(conn),
		nextPacketID: initialPacketID,
	}

	if err := c.auth(password); err != nil {
		conn.Close()
		return nil, err
	}
	return c, nil
}

// Command sends a command and returns the server's response body.
func (c *Connection) Command(cmd string) (string, error) {
	if len(cmd) > maxBodySize-packetHeaderSize {
		return "", ErrCommandTooLong
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	if _, err := c.send(packetTypeExecCommand, cmd); err != nil {
		return "", err
	}
	received, err := c.receive()
	if err != nil {
		return "", err
	}
	return received.body, nil
}

// Close terminates the session.
func (c *Connection) Close() error {
	return c.conn.Close()
}

// SetDeadline bounds all subsequent reads and writes.
func (c *Connection) SetDeadline(t time.Time) error {
	return c.conn.SetDeadline(t)
}

func (c *Connection) auth(password string) error {
	if _, err := c.send(packetTypeAuth, password); err != nil {
		return err
	}

	// The server may send an empty response packet before the auth response
	for {
		received, err := c.receive()
		if err != nil {
			return err
		}
		if received.ptype != packetTypeAuthResponse {
			continue
		}
		// a negative id signals a rejected password
		if received.id < 0 {
			return ErrAuthFailed
		}
		return nil
	}
}

// send writes one packet as a single buffer so it goes out in one TCP
// segment, and returns the packet id used.
func (c *Connection) send(ptype int32, body string) (int32, error) {
	id := c.generatePacketID()

	length := int32(packetHeaderSize + len(body))
	buf := make([]byte, 0, length+4)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(length))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(id))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(ptype))
	buf = append(buf, body...)
	buf = append(buf, 0x00, 0x00)

	if _, err := c.conn.Write(buf); err != nil {
		return 0, fmt.Errorf("rcon: failed to send packet: %w", err)
	}
	return id, nil
}

func (c *Connection) receive() (*packet, error) {
	var header [12]byte
	if _, err := io.ReadFull(c.reader, header[:]); err != nil {
		return nil, fmt.Errorf("rcon: failed to read packet header: %w", err)
	}

	length := int32(binary.LittleEndian.Uint32(header[0:4]))
	id := int32(binary.LittleEndian.Uint32(header[4:8]))
	ptype := int32(binary.LittleEndian.Uint32(header[8:12]))

	bodyLength := length - packetHeaderSize
	if bodyLength < 0 || bodyLength > maxBodySize {
		return nil, fmt.Errorf("rcon: invalid packet length %d", length)
	}

	body := make([]byte, bodyLength)
	if _, err := io.ReadFull(c.reader, body); err != nil {
		return nil, fmt.Errorf("rcon: failed to read packet body: %w", err)
	}

	// terminating nulls
	var trailer [2]byte
	if _, err := io.ReadFull(c.reader, trailer[:]); err != nil {
		return nil, fmt.Errorf("rcon: failed to read packet trailer: %w", err)
	}

	return &packet{id: id, ptype: ptype, body: string(body)}, nil
}

// generatePacketID hands out positive ids only; the server uses negative ids
// to signal failed authentication.
func (c *Connection) generatePacketID() int32 {
	id := c.nextPacketID
	if c.nextPacketID == 1<<31-1 {
		c.nextPacketID = initialPacketID
	} else {
		c.nextPacketID++
	}
	return id
}
