package domain

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"
)

// SendTweetDiscriminator selects the send_tweet instruction.
var SendTweetDiscriminator = InstructionDiscriminator("send_tweet")

// maxInstructionString bounds string lengths accepted when decoding an
// instruction, so a forged prefix cannot force a huge allocation.
const maxInstructionString = 64 * 1024

var errBadInstruction = errors.New("malformed send_tweet instruction")

// SendTweetInstruction asks the program to create a tweet account at Tweet,
// authored and paid for by Author. Its binary encoding is the message the
// author signs.
type SendTweetInstruction struct {
	Tweet   Identity
	Author  Identity
	Topic   string
	Content string
}

// MarshalBinary encodes the instruction as
// discriminator | tweet | author | u32 len topic | topic | u32 len content | content.
func (ix SendTweetInstruction) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(DiscriminatorLength + 2*IdentitySize + 2*StringLengthPrefix + len(ix.Topic) + len(ix.Content))

	buf.Write(SendTweetDiscriminator[:])
	buf.Write(ix.Tweet[:])
	buf.Write(ix.Author[:])
	if err := writeString(&buf, ix.Topic); err != nil {
		return nil, fmt.Errorf("error writing topic: %w", err)
	}
	if err := writeString(&buf, ix.Content); err != nil {
		return nil, fmt.Errorf("error writing content: %w", err)
	}
	return buf.Bytes(), nil
}

// UnmarshalBinary decodes an instruction produced by MarshalBinary.
func (ix *SendTweetInstruction) UnmarshalBinary(data []byte) error {
	r := bytes.NewReader(data)

	var disc [DiscriminatorLength]byte
	if _, err := io.ReadFull(r, disc[:]); err != nil {
		return fmt.Errorf("%w: read discriminator: %v", errBadInstruction, err)
	}
	if disc != SendTweetDiscriminator {
		return fmt.Errorf("%w: unknown discriminator %x", errBadInstruction, disc)
	}

	var decoded SendTweetInstruction
	if _, err := io.ReadFull(r, decoded.Tweet[:]); err != nil {
		return fmt.Errorf("%w: read tweet address: %v", errBadInstruction, err)
	}
	if _, err := io.ReadFull(r, decoded.Author[:]); err != nil {
		return fmt.Errorf("%w: read author: %v", errBadInstruction, err)
	}

	var err error
	if decoded.Topic, err = readInstructionString(r); err != nil {
		return fmt.Errorf("%w: read topic: %v", errBadInstruction, err)
	}
	if decoded.Content, err = readInstructionString(r); err != nil {
		return fmt.Errorf("%w: read content: %v", errBadInstruction, err)
	}
	if r.Len() != 0 {
		return fmt.Errorf("%w: %d trailing bytes", errBadInstruction, r.Len())
	}

	*ix = decoded
	return nil
}

func writeString(w io.Writer, s string) error {
	if err := binary.Write(w, binary.LittleEndian, uint32(len(s))); err != nil {
		return err
	}
	_, err := io.WriteString(w, s)
	return err
}

func readInstructionString(r io.Reader) (string, error) {
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return "", err
	}
	if n > maxInstructionString {
		return "", fmt.Errorf("string length %d too large", n)
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", errors.New("invalid utf-8")
	}
	return string(b), nil
}
