package core

import (
	"math"
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
)

// Hand-written MUS serializers for the persisted domain types. Field order is
// part of the on-disk format; append new fields at the end only.

// IDMUS serializes ID values.
var IDMUS = idMUS{}

type idMUS struct{}

func (idMUS) Marshal(id ID, bs []byte) (n int) {
	return varint.Uint64.Marshal(uint64(id), bs)
}

func (idMUS) Unmarshal(bs []byte) (id ID, n int, err error) {
	v, n, err := varint.Uint64.Unmarshal(bs)
	return ID(v), n, err
}

func (idMUS) Size(id ID) (size int) {
	return varint.Uint64.Size(uint64(id))
}

func (idMUS) Skip(bs []byte) (n int, err error) {
	return varint.Uint64.Skip(bs)
}

// float64 values travel as their IEEE-754 bits.
func marshalFloat64(v float64, bs []byte) (n int) {
	return varint.Uint64.Marshal(math.Float64bits(v), bs)
}

func unmarshalFloat64(bs []byte) (v float64, n int, err error) {
	bits, n, err := varint.Uint64.Unmarshal(bs)
	return math.Float64frombits(bits), n, err
}

func sizeFloat64(v float64) (size int) {
	return varint.Uint64.Size(math.Float64bits(v))
}

func marshalTime(t time.Time, bs []byte) (n int) {
	return varint.Int64.Marshal(t.UnixMicro(), bs)
}

func unmarshalTime(bs []byte) (t time.Time, n int, err error) {
	micros, n, err := varint.Int64.Unmarshal(bs)
	if err != nil {
		return time.Time{}, n, err
	}
	return time.UnixMicro(micros).UTC(), n, nil
}

func sizeTime(t time.Time) (size int) {
	return varint.Int64.Size(t.UnixMicro())
}

func marshalStrings(ss []string, bs []byte) (n int) {
	n = varint.Int.Marshal(len(ss), bs)
	for _, s := range ss {
		n += ord.String.Marshal(s, bs[n:])
	}
	return n
}

func unmarshalStrings(bs []byte) (ss []string, n int, err error) {
	count, n, err := varint.Int.Unmarshal(bs)
	if err != nil {
		return nil, n, err
	}
	if count == 0 {
		return nil, n, nil
	}
	ss = make([]string, count)
	for i := 0; i < count; i++ {
		var n1 int
		ss[i], n1, err = ord.String.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return nil, n, err
		}
	}
	return ss, n, nil
}

func sizeStrings(ss []string) (size int) {
	size = varint.Int.Size(len(ss))
	for _, s := range ss {
		size += ord.String.Size(s)
	}
	return size
}

// ContributionMUS serializes Contribution values.
var ContributionMUS = contributionMUS{}

type contributionMUS struct{}

func (contributionMUS) Marshal(c Contribution, bs []byte) (n int) {
	n = IDMUS.Marshal(c.Id, bs)
	n += ord.String.Marshal(c.Question, bs[n:])
	n += ord.String.Marshal(c.OriginalQuestion, bs[n:])
	n += ord.String.Marshal(c.Answer, bs[n:])
	n += ord.String.Marshal(c.QuestionType, bs[n:])
	n += ord.String.Marshal(c.UserId, bs[n:])
	n += ord.String.Marshal(c.UserEmail, bs[n:])
	n += ord.String.Marshal(c.ImprovementType, bs[n:])
	n += marshalFloat64(c.Rating, bs[n:])
	n += varint.Int64.Marshal(c.UsageCount, bs[n:])
	n += marshalStrings(c.Keywords, bs[n:])
	n += ord.String.Marshal(c.ContentHash, bs[n:])
	n += varint.Int.Marshal(int(c.Approval), bs[n:])
	n += marshalTime(c.SubmittedAt, bs[n:])
	n += marshalTime(c.UpdatedAt, bs[n:])
	return n
}

func (contributionMUS) Unmarshal(bs []byte) (c Contribution, n int, err error) {
	var n1 int
	if c.Id, n, err = IDMUS.Unmarshal(bs); err != nil {
		return
	}
	if c.Question, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return c, n + n1, err
	}
	n += n1
	if c.OriginalQuestion, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return c, n + n1, err
	}
	n += n1
	if c.Answer, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return c, n + n1, err
	}
	n += n1
	if c.QuestionType, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return c, n + n1, err
	}
	n += n1
	if c.UserId, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return c, n + n1, err
	}
	n += n1
	if c.UserEmail, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return c, n + n1, err
	}
	n += n1
	if c.ImprovementType, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return c, n + n1, err
	}
	n += n1
	if c.Rating, n1, err = unmarshalFloat64(bs[n:]); err != nil {
		return c, n + n1, err
	}
	n += n1
	if c.UsageCount, n1, err = varint.Int64.Unmarshal(bs[n:]); err != nil {
		return c, n + n1, err
	}
	n += n1
	if c.Keywords, n1, err = unmarshalStrings(bs[n:]); err != nil {
		return c, n + n1, err
	}
	n += n1
	if c.ContentHash, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return c, n + n1, err
	}
	n += n1
	var approval int
	if approval, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return c, n + n1, err
	}
	c.Approval = ApprovalState(approval)
	n += n1
	if c.SubmittedAt, n1, err = unmarshalTime(bs[n:]); err != nil {
		return c, n + n1, err
	}
	n += n1
	if c.UpdatedAt, n1, err = unmarshalTime(bs[n:]); err != nil {
		return c, n + n1, err
	}
	n += n1
	return c, n, nil
}

func (contributionMUS) Size(c Contribution) (size int) {
	size = IDMUS.Size(c.Id)
	size += ord.String.Size(c.Question)
	size += ord.String.Size(c.OriginalQuestion)
	size += ord.String.Size(c.Answer)
	size += ord.String.Size(c.QuestionType)
	size += ord.String.Size(c.UserId)
	size += ord.String.Size(c.UserEmail)
	size += ord.String.Size(c.ImprovementType)
	size += sizeFloat64(c.Rating)
	size += varint.Int64.Size(c.UsageCount)
	size += sizeStrings(c.Keywords)
	size += ord.String.Size(c.ContentHash)
	size += varint.Int.Size(int(c.Approval))
	size += sizeTime(c.SubmittedAt)
	size += sizeTime(c.UpdatedAt)
	return size
}

// ChunkMUS serializes Chunk values.
var ChunkMUS = chunkMUS{}

type chunkMUS struct{}

func (chunkMUS) Marshal(c Chunk, bs []byte) (n int) {
	n = ord.String.Marshal(c.SourceDocument, bs)
	n += varint.Int64.Marshal(c.ChunkIndex, bs[n:])
	n += ord.String.Marshal(c.Text, bs[n:])
	n += varint.Int64.Marshal(c.CharCount, bs[n:])
	return n
}

func (chunkMUS) Unmarshal(bs []byte) (c Chunk, n int, err error) {
	var n1 int
	if c.SourceDocument, n, err = ord.String.Unmarshal(bs); err != nil {
		return
	}
	if c.ChunkIndex, n1, err = varint.Int64.Unmarshal(bs[n:]); err != nil {
		return c, n + n1, err
	}
	n += n1
	if c.Text, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return c, n + n1, err
	}
	n += n1
	if c.CharCount, n1, err = varint.Int64.Unmarshal(bs[n:]); err != nil {
		return c, n + n1, err
	}
	n += n1
	return c, n, nil
}

func (chunkMUS) Size(c Chunk) (size int) {
	size = ord.String.Size(c.SourceDocument)
	size += varint.Int64.Size(c.ChunkIndex)
	size += ord.String.Size(c.Text)
	size += varint.Int64.Size(c.CharCount)
	return size
}
