package credstore

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
)

const recordVersion1 = 1

// encodeRecord serializes a Record into the versioned binary layout used by
// the Redis backend: a version byte, CreatedAt, then length-prefixed fields.
func encodeRecord(record *Record) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte(recordVersion1)

	if err := binary.Write(&buf, binary.BigEndian, record.CreatedAt); err != nil {
		return nil, err
	}

	for _, field := range [][]byte{
		[]byte(record.Username),
		[]byte(record.PasswordHash),
		[]byte(record.Salt),
		[]byte(record.Role),
		record.EncryptedEmail,
		record.WrappedUserKey,
	} {
		if len(field) > 65535 {
			return nil, errors.New("record field length exceeded")
		}
		if err := binary.Write(&buf, binary.BigEndian, uint16(len(field))); err != nil {
			return nil, err
		}
		buf.Write(field)
	}

	return buf.Bytes(), nil
}

func decodeRecord(data []byte) (*Record, error) {
	reader := bytes.NewReader(data)

	version, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}
	if version != recordVersion1 {
		return nil, errors.New("invalid record version")
	}

	record := &Record{}
	if err := binary.Read(reader, binary.BigEndian, &record.CreatedAt); err != nil {
		return nil, err
	}

	fields := make([][]byte, 6)
	for i := range fields {
		var length uint16
		if err := binary.Read(reader, binary.BigEndian, &length); err != nil {
			return nil, err
		}
		field := make([]byte, length)
		if _, err := io.ReadFull(reader, field); err != nil {
			return nil, err
		}
		fields[i] = field
	}

	record.Username = string(fields[0])
	record.PasswordHash = string(fields[1])
	record.Salt = string(fields[2])
	record.Role = string(fields[3])
	if len(fields[4]) > 0 {
		record.EncryptedEmail = fields[4]
	}
	if len(fields[5]) > 0 {
		record.WrappedUserKey = fields[5]
	}

	return record, nil
}
