/*
   IECDrive - Commodore 1541 drive emulator
   Copyright (c) 2022, Alexander Vollschwitz

   This file is part of IECDrive.

   IECDrive is free software: you can redistribute it and/or modify
   it under the terms of the GNU General Public License as published by
   the Free Software Foundation, either version 3 of the License, or
   (at your option) any later version.

   IECDrive is distributed in the hope that it will be useful,
   but WITHOUT ANY WARRANTY; without even the implied warranty of
   MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
   GNU General Public License for more details.

   You should have received a copy of the GNU General Public License
   along with IECDrive. If not, see <http://www.gnu.org/licenses/>.
*/

package native

import (
	"bufio"
	"fmt"
	"io"
	"os"
)

// Stream is a host file opened for either reading or writing. Reading looks
// ahead one byte, so that EOF is known as soon as the last byte was handed out.
type Stream struct {
	file *os.File
	rd   *bufio.Reader
	wr   *bufio.Writer
	size int
	eof  bool
}

// OpenStream opens path for reading, skipping the first skip bytes.
func OpenStream(path string, skip int) (*Stream, error) {

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}

	if skip > 0 {
		if _, err := f.Seek(int64(skip), io.SeekStart); err != nil {
			f.Close()
			return nil, err
		}
	}

	s := &Stream{file: f, rd: bufio.NewReader(f)}
	if s.size = int(info.Size()) - skip; s.size < 0 {
		s.size = 0
	}
	s.lookAhead()
	return s, nil
}

// CreateStream creates path for writing. An existing file is only replaced if
// replace is set.
func CreateStream(path string, replace bool) (*Stream, error) {

	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !replace {
		flags |= os.O_EXCL
	}

	f, err := os.OpenFile(path, flags, 0644)
	if err != nil {
		return nil, err
	}

	return &Stream{file: f, wr: bufio.NewWriter(f)}, nil
}

//
func (s *Stream) lookAhead() {
	if _, err := s.rd.Peek(1); err != nil {
		s.eof = true
	}
}

// Getc returns the next byte, or 0 when already at EOF.
func (s *Stream) Getc() byte {
	if s.rd == nil || s.eof {
		return 0
	}
	b, err := s.rd.ReadByte()
	if err != nil {
		s.eof = true
		return 0
	}
	s.lookAhead()
	return b
}

//
func (s *Stream) EOF() bool {
	return s.rd == nil || s.eof
}

//
func (s *Stream) Putc(b byte) error {
	if s.wr == nil {
		return fmt.Errorf("stream not open for writing")
	}
	if err := s.wr.WriteByte(b); err != nil {
		return err
	}
	s.size++
	return nil
}

//
func (s *Stream) Write(p []byte) error {
	if s.wr == nil {
		return fmt.Errorf("stream not open for writing")
	}
	n, err := s.wr.Write(p)
	s.size += n
	return err
}

// Size returns the payload size for reading, or the bytes written so far.
func (s *Stream) Size() int {
	return s.size
}

//
func (s *Stream) Close() error {
	if s.file == nil {
		return nil
	}
	var err error
	if s.wr != nil {
		err = s.wr.Flush()
	}
	if e := s.file.Close(); err == nil {
		err = e
	}
	s.file = nil
	return err
}
