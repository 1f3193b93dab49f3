package net

import (
	"bufio"
	"io"
	"sync"

	"github.com/nohmar/tranquility/src/wire"
	"github.com/sirupsen/logrus"
)

// maxLineBytes bounds the size of a single inbound line.
const maxLineBytes = 1024 * 1024

// StreamTransport carries newline-delimited JSON messages over a reader and
// a writer, normally stdin and stdout. One message is consumed per input
// line; each outbound message is written as a single line and flushed
// immediately.
type StreamTransport struct {
	reader io.Reader
	writer io.Writer

	consumerCh chan wire.Message
	writeLock  sync.Mutex

	shutdown     bool
	shutdownCh   chan struct{}
	shutdownLock sync.Mutex

	localAddr string
	logger    *logrus.Entry
}

// NewStreamTransport returns a StreamTransport wrapping the given streams.
func NewStreamTransport(r io.Reader, w io.Writer, logger *logrus.Entry) *StreamTransport {
	return &StreamTransport{
		reader:     r,
		writer:     w,
		consumerCh: make(chan wire.Message, 16),
		shutdownCh: make(chan struct{}),
		localAddr:  "stdio",
		logger:     logger.WithField("component", "transport"),
	}
}

// Listen starts the inbound pump. A line that fails to decode is logged and
// dropped; the loop moves on to the next line. The consumer channel is
// closed when the input stream ends.
func (s *StreamTransport) Listen() {
	go s.listen()
}

func (s *StreamTransport) listen() {
	scanner := bufio.NewScanner(s.reader)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		msg, err := wire.Decode(line)
		if err != nil {
			s.logger.WithFields(logrus.Fields{
				"line":  string(line),
				"error": err,
			}).Error("Decoding inbound line")
			continue
		}

		// The consumer may already be gone when the transport is closed,
		// so the push must never block past shutdown.
		select {
		case s.consumerCh <- msg:
		case <-s.shutdownCh:
			close(s.consumerCh)
			return
		}
	}

	if err := scanner.Err(); err != nil {
		s.logger.WithError(err).Error("Reading input stream")
	}

	close(s.consumerCh)
}

// Consumer implements the Transport interface.
func (s *StreamTransport) Consumer() <-chan wire.Message {
	return s.consumerCh
}

// Send implements the Transport interface. The line is written in a single
// call under a lock so concurrent handlers never interleave partial lines.
func (s *StreamTransport) Send(msg wire.Message) error {
	enc, err := wire.Encode(msg)
	if err != nil {
		return err
	}

	s.writeLock.Lock()
	defer s.writeLock.Unlock()

	_, err = s.writer.Write(append(enc, '\n'))
	return err
}

// LocalAddr implements the Transport interface.
func (s *StreamTransport) LocalAddr() string {
	return s.localAddr
}

// Close implements the Transport interface. It releases the inbound pump;
// the underlying streams are owned by the caller and are not closed here. A
// pump blocked on a read keeps waiting until the reader itself ends.
func (s *StreamTransport) Close() error {
	s.shutdownLock.Lock()
	defer s.shutdownLock.Unlock()

	if !s.shutdown {
		close(s.shutdownCh)
		s.shutdown = true
	}
	return nil
}
