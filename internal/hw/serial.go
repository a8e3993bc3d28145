package hw

import (
	"bufio"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"

	"go.bug.st/serial"
)

// DefaultBaudRate matches the ADC bridge firmware's UART configuration.
const DefaultBaudRate = 115200

// SerialADC reads analog samples from an MCU bridge that streams one
// decimal reading per line over a serial port. A background goroutine
// consumes lines and keeps only the latest value: the bridge free-runs
// faster than either sketch's tick, and stale intermediate readings are
// worthless once a newer one exists.
type SerialADC struct {
	port serial.Port

	mu     sync.RWMutex
	latest int
	seeded bool
	closed bool
}

// OpenSerialADC opens the named serial port and starts consuming samples.
func OpenSerialADC(portName string, baudRate int) (*SerialADC, error) {
	if baudRate == 0 {
		baudRate = DefaultBaudRate
	}
	port, err := serial.Open(portName, &serial.Mode{BaudRate: baudRate})
	if err != nil {
		return nil, fmt.Errorf("open serial port %s: %w", portName, err)
	}

	s := &SerialADC{port: port}
	go s.consume()
	return s, nil
}

// consume reads lines off the port until it is closed.
func (s *SerialADC) consume() {
	scanner := bufio.NewScanner(s.port)
	for scanner.Scan() {
		v, err := parseSampleLine(scanner.Text())
		if err != nil {
			// Partial first line after open, or line noise. Skip it.
			continue
		}
		s.mu.Lock()
		s.latest = v
		s.seeded = true
		s.mu.Unlock()
	}
	s.mu.RLock()
	closed := s.closed
	s.mu.RUnlock()
	if err := scanner.Err(); err != nil && !closed {
		log.Printf("serial adc: read loop ended: %v", err)
	}
}

// parseSampleLine extracts a reading from one bridge line. The bridge
// emits bare decimal values; CRLF and surrounding whitespace are stripped.
func parseSampleLine(line string) (int, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return 0, fmt.Errorf("empty line")
	}
	v, err := strconv.Atoi(line)
	if err != nil {
		return 0, fmt.Errorf("parse sample %q: %w", line, err)
	}
	if v < 0 {
		return 0, fmt.Errorf("negative sample %d", v)
	}
	return v, nil
}

// Read returns the most recent reading, or ErrNoSample before the first
// line has arrived.
func (s *SerialADC) Read() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.seeded {
		return 0, ErrNoSample
	}
	return s.latest, nil
}

// Close stops the reader and releases the port.
func (s *SerialADC) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return s.port.Close()
}
