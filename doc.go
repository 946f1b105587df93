// Package seqtag provides lexical analysis (word segmentation, part-of-speech
// and named entity tagging) using BiGRU-CRF models exported to ONNX, together
// with chunk-level precision/recall/F1 evaluation.
//
// # Quick Start
//
//	tagger, err := seqtag.New("lac.onnx", "conf/")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer tagger.Close()
//
//	words, err := tagger.Tag(ctx, "我爱北京天安门")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, w := range words {
//	    fmt.Printf("%s/%s ", w.Text, w.Type)
//	}
//
// # Evaluation
//
// Tagger.Counter returns a chunk.Counter configured for the model's label
// layout. Feed its per-batch counts to a chunk.Evaluator to get per-batch and
// cumulative precision, recall and F1.
//
// # Thread Safety
//
// Tagger is safe for concurrent use. It manages an internal pool of ONNX
// sessions, configurable via WithPoolSize. chunk.Evaluator is not; give each
// concurrent worker its own or serialize updates.
//
// # Model Files
//
// The model must take int64 inputs "word" [batch, seq] and "length" [batch]
// and produce the int64 output "crf_decode" [batch, seq]. The vocabulary
// directory holds word.dic and tag.dic ("id<TAB>value" per line) and an
// optional q2b.dic character map.
package seqtag
