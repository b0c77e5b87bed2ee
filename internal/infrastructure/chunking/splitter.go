package chunking

import "strings"

// separators are tried in order: paragraph, line, sentence, word. The empty
// separator is the terminal hard split for pathological unbroken text.
var separators = []string{"\n\n", "\n", ". ", "? ", "! ", " ", ""}

// Splitter cuts text into chunks of at most ChunkSize runes, preferring
// natural boundaries and carrying Overlap runes of trailing context into the
// next chunk.
type Splitter struct {
	ChunkSize int
	Overlap   int
}

func NewSplitter(chunkSize, overlap int) *Splitter {
	if chunkSize <= 0 {
		chunkSize = 1500
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= chunkSize {
		overlap = chunkSize / 4
	}
	return &Splitter{
		ChunkSize: chunkSize,
		Overlap:   overlap,
	}
}

func (s *Splitter) Split(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	return s.merge(s.atoms(text, separators))
}

// atoms breaks text into pieces no longer than ChunkSize, descending the
// separator hierarchy only for pieces that are still too long.
func (s *Splitter) atoms(text string, seps []string) []string {
	if len([]rune(text)) <= s.ChunkSize {
		return []string{text}
	}
	if len(seps) == 0 || seps[0] == "" {
		return s.hardSplit(text)
	}

	var out []string
	for _, part := range strings.SplitAfter(text, seps[0]) {
		if part == "" {
			continue
		}
		if len([]rune(part)) <= s.ChunkSize {
			out = append(out, part)
			continue
		}
		out = append(out, s.atoms(part, seps[1:])...)
	}
	return out
}

// hardSplit cuts unbreakable text into step-sized rune windows. The step
// leaves room for the overlap carry so merged chunks stay within ChunkSize.
func (s *Splitter) hardSplit(text string) []string {
	runes := []rune(text)
	step := s.ChunkSize - s.Overlap
	if step <= 0 {
		step = s.ChunkSize
	}

	out := make([]string, 0, len(runes)/step+1)
	for start := 0; start < len(runes); start += step {
		end := start + step
		if end > len(runes) {
			end = len(runes)
		}
		out = append(out, string(runes[start:end]))
	}
	return out
}

// merge greedily packs atoms into chunks. When a chunk closes, its trailing
// Overlap runes seed the next chunk unless that would push the next atom over
// the size limit.
func (s *Splitter) merge(atoms []string) []string {
	var (
		chunks []string
		cur    []rune
	)

	flush := func(next []rune) {
		chunk := strings.TrimSpace(string(cur))
		if chunk != "" {
			chunks = append(chunks, chunk)
		}

		carry := cur
		if len(carry) > s.Overlap {
			carry = carry[len(carry)-s.Overlap:]
		}
		if len(carry)+len(next) > s.ChunkSize {
			carry = nil
		}
		cur = append([]rune{}, carry...)
	}

	for _, atom := range atoms {
		runes := []rune(atom)
		if len(cur) > 0 && len(cur)+len(runes) > s.ChunkSize {
			flush(runes)
		}
		cur = append(cur, runes...)
	}
	if chunk := strings.TrimSpace(string(cur)); chunk != "" {
		chunks = append(chunks, chunk)
	}
	return chunks
}
