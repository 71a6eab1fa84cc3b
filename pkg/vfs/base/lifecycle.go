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

package base

// ImageState tells whether a driver has usable media.
type ImageState int

//
const (
	ImageNotReady ImageState = iota
	ImageReady
)

// StreamState tracks the single file a driver can have open.
type StreamState int

//
const (
	StreamClosed StreamState = iota
	StreamOpen
	StreamEOF
)

//
func (s StreamState) String() string {
	switch s {
	case StreamClosed:
		return "closed"
	case StreamOpen:
		return "open"
	case StreamEOF:
		return "eof"
	}
	return "unknown"
}

// Lifecycle composes image and stream state of a driver. Drivers embed it.
type Lifecycle struct {
	image  ImageState
	stream StreamState
}

//
func (l *Lifecycle) IsReady() bool {
	return l.image == ImageReady
}

// SetReady changes the image state. Losing the image closes the stream.
func (l *Lifecycle) SetReady(ready bool) {
	if ready {
		l.image = ImageReady
	} else {
		l.image = ImageNotReady
		l.stream = StreamClosed
	}
}

//
func (l *Lifecycle) Stream() StreamState {
	return l.stream
}

// IsOpen is true while a stream is open, including at EOF.
func (l *Lifecycle) IsOpen() bool {
	return l.stream != StreamClosed
}

//
func (l *Lifecycle) AtEOF() bool {
	return l.stream == StreamEOF
}

// OpenStream marks the stream open. Returns false if there is no image.
func (l *Lifecycle) OpenStream() bool {
	if l.image != ImageReady {
		return false
	}
	l.stream = StreamOpen
	return true
}

//
func (l *Lifecycle) SetEOF() {
	if l.stream == StreamOpen {
		l.stream = StreamEOF
	}
}

//
func (l *Lifecycle) CloseStream() {
	l.stream = StreamClosed
}
