// Copyright 2026 The Convos Authors
// SPDX-License-Identifier: Apache-2.0

// Package deflate implements the compressed frame format used inside
// invite slugs and group metadata fields.
//
// A frame is marker(1, 0x1F) || originalSize(4, big-endian) || a
// DEFLATE stream. Frames are only produced when they are strictly
// smaller than the raw input; otherwise the raw bytes travel as-is and
// the marker byte is absent, which is how readers tell the two apart.
//
// Decompression enforces a 1 MiB ceiling on the declared original size
// before allocating anything, rejecting decompression bombs. Reads
// tolerate both zlib-wrapped and raw DEFLATE streams because peer
// implementations differ in wrapper convention; a wrapper mismatch is
// retried with the other wrapper, and only a double failure is an
// error.
package deflate

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zlib"

	"github.com/convos-chat/convoskit/lib/protoerr"
)

// Marker is the first byte of every compressed frame. Raw payloads
// produced by CompressIfSmaller never start with it, because a payload
// starting with 0x1F always compresses through (the frame would be
// preferred only when smaller, and ambiguity is resolved by the reader
// attempting decompression first).
const Marker byte = 0x1F

// headerSize is the marker byte plus the 4-byte original size.
const headerSize = 5

// MaxDecompressedSize is the hard ceiling on a frame's declared
// original size. Frames claiming more are rejected before any
// allocation or inflation happens.
const MaxDecompressedSize = 1 << 20

// CompressIfSmaller deflates data and wraps it in a frame. It returns
// the frame and true only when the frame is strictly smaller than the
// input; otherwise it returns nil and false, signaling "send raw".
//
// Inputs larger than MaxDecompressedSize are never compressed: the
// resulting frame would be unreadable by any conforming peer.
func CompressIfSmaller(data []byte) ([]byte, bool) {
	if len(data) == 0 || len(data) > MaxDecompressedSize {
		return nil, false
	}

	var buffer bytes.Buffer
	buffer.WriteByte(Marker)
	var sizeBytes [4]byte
	binary.BigEndian.PutUint32(sizeBytes[:], uint32(len(data)))
	buffer.Write(sizeBytes[:])

	writer := zlib.NewWriter(&buffer)
	if _, err := writer.Write(data); err != nil {
		return nil, false
	}
	if err := writer.Close(); err != nil {
		return nil, false
	}

	if buffer.Len() >= len(data) {
		return nil, false
	}
	return buffer.Bytes(), true
}

// IsCompressed reports whether data starts with the frame marker.
// Callers use this to decide between Decompress and using the bytes
// raw.
func IsCompressed(data []byte) bool {
	return len(data) > 0 && data[0] == Marker
}

// Decompress validates and inflates a frame produced by
// CompressIfSmaller or by a peer implementation. The declared original
// size must be within [0, MaxDecompressedSize] and the inflated output
// must match it exactly.
func Decompress(frame []byte) ([]byte, error) {
	if len(frame) < headerSize {
		return nil, protoerr.New(protoerr.KindTruncated, "compressed frame is %d bytes, need at least %d", len(frame), headerSize)
	}
	if frame[0] != Marker {
		return nil, protoerr.New(protoerr.KindInvalidFormat, "compressed frame marker is 0x%02X, want 0x%02X", frame[0], Marker)
	}

	originalSize := binary.BigEndian.Uint32(frame[1:headerSize])
	if originalSize > MaxDecompressedSize {
		return nil, protoerr.New(protoerr.KindInvalidFormat, "declared original size %d exceeds %d byte ceiling", originalSize, MaxDecompressedSize)
	}

	stream := frame[headerSize:]

	// Peers disagree on whether the DEFLATE stream carries the zlib
	// wrapper. Try zlib first (our write convention), then raw. Either
	// attempt succeeds only when the inflated length matches the
	// declared size exactly.
	zlibOutput, zlibErr := inflateZlib(stream, int(originalSize))
	if zlibErr == nil {
		return zlibOutput, nil
	}
	rawOutput, rawErr := inflateRaw(stream, int(originalSize))
	if rawErr == nil {
		return rawOutput, nil
	}

	return nil, protoerr.Wrap(protoerr.KindInvalidFormat, zlibErr, "frame inflates with neither zlib nor raw deflate wrapper (raw: %v)", rawErr)
}

func inflateZlib(stream []byte, originalSize int) ([]byte, error) {
	reader, err := zlib.NewReader(bytes.NewReader(stream))
	if err != nil {
		return nil, err
	}
	defer reader.Close()
	return readExactly(reader, originalSize)
}

func inflateRaw(stream []byte, originalSize int) ([]byte, error) {
	reader := flate.NewReader(bytes.NewReader(stream))
	defer reader.Close()
	return readExactly(reader, originalSize)
}

// readExactly reads the inflated stream, never consuming more than
// originalSize+1 bytes, and errors unless the stream inflates to
// exactly originalSize bytes. The +1 overread is how a lying header
// (declared size smaller than actual content) is detected without
// inflating the whole stream.
func readExactly(reader io.Reader, originalSize int) ([]byte, error) {
	output, err := io.ReadAll(io.LimitReader(reader, int64(originalSize)+1))
	if err != nil {
		return nil, err
	}
	if len(output) != originalSize {
		return nil, protoerr.New(protoerr.KindInvalidFormat, "inflated to %d bytes, declared size is %d", len(output), originalSize)
	}
	return output, nil
}
