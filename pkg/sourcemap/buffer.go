package sourcemap

// Binary dump format for cross-process handoff. Little-endian framing:
//
//	"SMB1" | u64 xxhash64(payload) | payload
//
// The payload is the project root, the three string tables and every
// (line, column, original) tuple. The checksum is verified before any
// state is touched, so a corrupt buffer never half-populates a map.

import (
	"bytes"
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash/v2"
)

var bufferMagic = [4]byte{'S', 'M', 'B', '1'}

const (
	bufFlagOriginal = 1 << 0
	bufFlagName     = 1 << 1
)

// ToBuffer serializes the full map state into a self-describing binary
// buffer, suitable for handing the map to another process.
func (sm *SourceMap) ToBuffer() []byte {
	var payload bytes.Buffer

	writeString(&payload, sm.projectRoot)

	writeUint32(&payload, uint32(len(sm.sources)))
	for _, source := range sm.sources {
		writeString(&payload, source)
	}

	writeUint32(&payload, uint32(len(sm.sourcesContent)))
	// Emit contents in source index order so equal maps produce equal bytes.
	for index := uint32(0); index < uint32(len(sm.sources)); index++ {
		content, ok := sm.sourcesContent[index]
		if !ok {
			continue
		}
		writeUint32(&payload, index)
		writeString(&payload, content)
	}

	writeUint32(&payload, uint32(len(sm.names)))
	for _, name := range sm.names {
		writeString(&payload, name)
	}

	writeUint32(&payload, uint32(len(sm.lines)))
	for _, line := range sm.lines {
		writeUint32(&payload, line.generatedLine)
		writeUint32(&payload, uint32(len(line.entries)))
		for _, entry := range line.entries {
			writeUint32(&payload, entry.column)

			var flags byte
			if entry.hasOriginal {
				flags |= bufFlagOriginal
				if entry.original.HasName {
					flags |= bufFlagName
				}
			}
			payload.WriteByte(flags)

			if entry.hasOriginal {
				writeUint32(&payload, entry.original.Source)
				writeUint32(&payload, entry.original.OriginalLine)
				writeUint32(&payload, entry.original.OriginalColumn)
				if entry.original.HasName {
					writeUint32(&payload, entry.original.Name)
				}
			}
		}
	}

	out := make([]byte, 0, 12+payload.Len())
	out = append(out, bufferMagic[:]...)
	out = binary.LittleEndian.AppendUint64(out, xxhash.Sum64(payload.Bytes()))
	out = append(out, payload.Bytes()...)
	return out
}

// FromBuffer reconstitutes a map from a buffer produced by ToBuffer.
func FromBuffer(buf []byte) (*SourceMap, error) {
	payload, err := checkBuffer(buf)
	if err != nil {
		return nil, err
	}

	r := &bufferReader{data: payload}

	projectRoot, err := r.readString()
	if err != nil {
		return nil, err
	}
	sm := New(projectRoot)

	sourceCount, err := r.readUint32()
	if err != nil {
		return nil, err
	}
	for i := uint32(0); i < sourceCount; i++ {
		source, err := r.readString()
		if err != nil {
			return nil, err
		}
		sm.sources = append(sm.sources, source)
	}

	contentCount, err := r.readUint32()
	if err != nil {
		return nil, err
	}
	for i := uint32(0); i < contentCount; i++ {
		index, err := r.readUint32()
		if err != nil {
			return nil, err
		}
		content, err := r.readString()
		if err != nil {
			return nil, err
		}
		if index >= sourceCount {
			return nil, newError(ErrBufferInvalid, "content index beyond sources table")
		}
		sm.sourcesContent[index] = content
	}

	nameCount, err := r.readUint32()
	if err != nil {
		return nil, err
	}
	for i := uint32(0); i < nameCount; i++ {
		name, err := r.readString()
		if err != nil {
			return nil, err
		}
		sm.names = append(sm.names, name)
	}

	lineCount, err := r.readUint32()
	if err != nil {
		return nil, err
	}
	for i := uint32(0); i < lineCount; i++ {
		generatedLine, err := r.readUint32()
		if err != nil {
			return nil, err
		}
		entryCount, err := r.readUint32()
		if err != nil {
			return nil, err
		}

		line := NewMappingLine(generatedLine)
		for j := uint32(0); j < entryCount; j++ {
			column, err := r.readUint32()
			if err != nil {
				return nil, err
			}
			flags, err := r.readByte()
			if err != nil {
				return nil, err
			}

			entry := lineEntry{column: column}
			if flags&bufFlagOriginal != 0 {
				source, err := r.readUint32()
				if err != nil {
					return nil, err
				}
				originalLine, err := r.readUint32()
				if err != nil {
					return nil, err
				}
				originalColumn, err := r.readUint32()
				if err != nil {
					return nil, err
				}
				if source >= sourceCount {
					return nil, newError(ErrBufferInvalid, "mapping source beyond sources table")
				}
				entry.original = NewOriginalLocation(source, originalLine, originalColumn)
				entry.hasOriginal = true

				if flags&bufFlagName != 0 {
					nameIndex, err := r.readUint32()
					if err != nil {
						return nil, err
					}
					if nameIndex >= nameCount {
						return nil, newError(ErrBufferInvalid, "mapping name beyond names table")
					}
					entry.original.Name = nameIndex
					entry.original.HasName = true
				}
			}
			line.entries = append(line.entries, entry)
		}

		if line.Len() > 0 {
			sm.lines = append(sm.lines, line)
		}
	}

	if !r.empty() {
		return nil, newError(ErrBufferInvalid, "trailing bytes after payload")
	}
	return sm, nil
}

// ExtendsBuffer merges a peer map serialized with ToBuffer into this map,
// dedup-merging the peer's string tables. The effect matches feeding the
// peer's WriteVLQ output through AddVLQMappings, with the addition that
// the peer's source contents travel too: they are installed for sources
// this map has no content for yet.
func (sm *SourceMap) ExtendsBuffer(buf []byte) error {
	peer, err := FromBuffer(buf)
	if err != nil {
		return err
	}

	sourceIndexes := sm.AddSources(peer.sources)
	nameIndexes := sm.AddNames(peer.names)

	for peerIndex, content := range peer.sourcesContent {
		index := sourceIndexes[peerIndex]
		if _, exists := sm.sourcesContent[index]; !exists {
			sm.sourcesContent[index] = content
		}
	}

	for _, line := range peer.lines {
		for _, entry := range line.entries {
			var original *OriginalLocation
			if entry.hasOriginal {
				loc := entry.original
				loc.Source = sourceIndexes[loc.Source]
				if loc.HasName {
					loc.Name = nameIndexes[loc.Name]
				}
				original = &loc
			}
			sm.AddMapping(Mapping{
				GeneratedLine:   line.generatedLine,
				GeneratedColumn: entry.column,
				Original:        original,
			})
		}
	}
	return nil
}

func checkBuffer(buf []byte) ([]byte, error) {
	if len(buf) < 12 {
		return nil, newError(ErrBufferInvalid, "buffer too short")
	}
	if !bytes.Equal(buf[:4], bufferMagic[:]) {
		return nil, newError(ErrBufferInvalid, "bad magic")
	}

	sum := binary.LittleEndian.Uint64(buf[4:12])
	payload := buf[12:]
	if xxhash.Sum64(payload) != sum {
		return nil, newError(ErrBufferInvalid, "checksum mismatch")
	}
	return payload, nil
}

func writeUint32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

func writeString(buf *bytes.Buffer, s string) {
	writeUint32(buf, uint32(len(s)))
	buf.WriteString(s)
}

type bufferReader struct {
	data []byte
	pos  int
}

func (r *bufferReader) empty() bool {
	return r.pos >= len(r.data)
}

func (r *bufferReader) readByte() (byte, error) {
	if r.pos+1 > len(r.data) {
		return 0, newError(ErrBufferInvalid, "truncated payload")
	}
	b := r.data[r.pos]
	r.pos++
	return b, nil
}

func (r *bufferReader) readUint32() (uint32, error) {
	if r.pos+4 > len(r.data) {
		return 0, newError(ErrBufferInvalid, "truncated payload")
	}
	v := binary.LittleEndian.Uint32(r.data[r.pos : r.pos+4])
	r.pos += 4
	return v, nil
}

func (r *bufferReader) readString() (string, error) {
	length, err := r.readUint32()
	if err != nil {
		return "", err
	}
	if uint64(r.pos)+uint64(length) > uint64(len(r.data)) || length > math.MaxInt32 {
		return "", newError(ErrBufferInvalid, "truncated payload")
	}
	s := string(r.data[r.pos : r.pos+int(length)])
	r.pos += int(length)
	return s, nil
}
