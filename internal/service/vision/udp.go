package vision

import (
	"bytes"
	"errors"
	"fmt"
	"net"
	"time"

	"gocv.io/x/gocv"

	"facescanner/internal/logger"
	"facescanner/internal/service/scanner"
)

var (
	jpegHeader = []byte{0xFF, 0xD8}
	jpegFooter = []byte{0xFF, 0xD9}
)

// UDPSource reassembles JPEG frames sent by network cameras over UDP.
// A frame starts with a packet carrying the JPEG SOI marker and ends with the EOI marker.
// Packets are assembled per sender, so frames from several cameras never mix.
type UDPSource struct {
	conn    *net.UDPConn
	idle    time.Duration
	buffer  []byte
	senders map[string]*bytes.Buffer
	logger  *logger.Logger
}

// ListenUDP binds the camera port. The stream ends after idle without packets.
func ListenUDP(port int, idle time.Duration, logger *logger.Logger) (*UDPSource, error) {
	addr, err := net.ResolveUDPAddr("udp", fmt.Sprintf(":%d", port))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve UDP address: %w", err)
	}

	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on UDP port %d: %w", port, err)
	}

	logger.Info("UDP camera source listening on port %d", port)
	return &UDPSource{
		conn:    conn,
		idle:    idle,
		buffer:  make([]byte, 65535),
		senders: make(map[string]*bytes.Buffer),
		logger:  logger,
	}, nil
}

// Addr is the bound local address.
func (s *UDPSource) Addr() net.Addr {
	return s.conn.LocalAddr()
}

// Next blocks until a complete frame has been received and decoded.
func (s *UDPSource) Next() (scanner.Frame, bool) {
	for {
		data, sender, ok := s.read()
		if !ok {
			return nil, false
		}

		complete, ok := s.push(sender, data)
		if !ok {
			continue
		}

		mat, err := gocv.IMDecode(complete, gocv.IMReadColor)
		if err != nil || mat.Empty() {
			if err == nil {
				mat.Close()
			}
			s.logger.Warning("Dropping undecodable frame from %s (%d bytes)", sender, len(complete))
			continue
		}
		return NewFrame(mat), true
	}
}

// read returns the next datagram and its sender; false means the stream is over.
func (s *UDPSource) read() ([]byte, string, bool) {
	if err := s.conn.SetReadDeadline(time.Now().Add(s.idle)); err != nil {
		s.logger.Error("Failed to set UDP read deadline: %v", err)
		return nil, "", false
	}

	n, remoteAddr, err := s.conn.ReadFromUDP(s.buffer)
	if err != nil {
		var netErr net.Error
		switch {
		case errors.As(err, &netErr) && netErr.Timeout():
			s.logger.Info("No camera packets for %s, ending stream", s.idle)
		case errors.Is(err, net.ErrClosed):
		default:
			s.logger.Error("Error reading UDP packet: %v", err)
		}
		return nil, "", false
	}

	return s.buffer[:n], remoteAddr.String(), true
}

// push appends a datagram to the frame being assembled for sender and returns the frame
// once complete.
func (s *UDPSource) push(sender string, data []byte) ([]byte, bool) {
	if s.senders == nil {
		s.senders = make(map[string]*bytes.Buffer)
	}
	frame, ok := s.senders[sender]
	if !ok {
		s.logger.Info("Receiving camera frames from %s", sender)
		frame = new(bytes.Buffer)
		s.senders[sender] = frame
	}

	if bytes.HasPrefix(data, jpegHeader) {
		frame.Reset()
	}
	frame.Write(data)

	if !bytes.HasSuffix(data, jpegFooter) {
		return nil, false
	}

	full := make([]byte, frame.Len())
	copy(full, frame.Bytes())
	frame.Reset()
	return full, true
}

func (s *UDPSource) Close() error {
	return s.conn.Close()
}
