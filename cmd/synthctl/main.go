// Command synthctl is a thin example binary over the kotoba engine's public
// surface. It is explicitly not the deliverable (spec.md §1 treats the
// command-line front-end as an external collaborator) — it exists only to
// give internal/config's flag layer something to parse into and to show the
// synchronous Synthesize entry point in use. WAV encoding, audio
// playback, and an interactive shell are all out of scope; synthctl writes
// raw little-endian float32 samples when --out is given and leaves any
// container format to the caller.
package main

import (
	"encoding/binary"
	"flag"
	"fmt"
	"log"
	"math"
	"os"

	"github.com/go-audio/audio"

	kotoba "github.com/kotoba-labs/kotoba-tts"
	"github.com/kotoba-labs/kotoba-tts/internal/config"
)

func init() {
	log.SetFlags(log.Ltime)
	log.SetOutput(os.Stdout)
}

func main() {
	text := flag.String("text", "", "Japanese text to synthesize")
	voiceID := flag.String("voice", "", "voice id (defaults to the registry's default voice)")
	speed := flag.Float64("speed", 1.0, "speed multiplier (0.5-2.0)")
	pitch := flag.Float64("pitch", 1.0, "pitch multiplier (0.5-2.0)")
	volume := flag.Float64("volume", 1.0, "volume multiplier (0.0-1.0)")
	out := flag.String("out", "", "path to write raw little-endian float32 samples (optional)")
	listVoices := flag.Bool("list-voices", false, "list loaded voices and exit")
	warmup := flag.Bool("warmup", false, "run inference warmup before synthesizing")

	opts, err := config.ParseFlags(true)
	if err != nil {
		log.Fatalf("configuration error: %v", err)
	}

	if *text == "" && !*listVoices {
		fmt.Fprintln(os.Stderr, "usage: synthctl -text \"こんにちは\" [-voice jf_alpha] [-out out.f32]")
		os.Exit(2)
	}

	engine := kotoba.New(opts.Engine)
	log.Println("🔊 loading synthesis pipeline...")
	if err := engine.Initialize(); err != nil {
		log.Fatalf("initialize: %v", err)
	}
	defer engine.Shutdown()
	log.Println("✅ pipeline ready")

	if *listVoices {
		for _, v := range engine.ListVoices() {
			fmt.Printf("%-12s %-8s %s\n", v.ID, v.Gender, v.Name)
		}
		return
	}

	if *warmup {
		log.Println("⚡ warming up...")
		if err := engine.Warmup(); err != nil {
			log.Fatalf("warmup: %v", err)
		}
	}

	voice := *voiceID
	if voice == "" {
		voice = engine.GetDefaultVoiceID()
	}

	req := kotoba.Request{
		Text:          *text,
		VoiceID:       voice,
		Speed:         float32(*speed),
		Pitch:         float32(*pitch),
		Volume:        float32(*volume),
		NormalizeText: opts.Engine.NormalizeText,
		UseCache:      opts.Engine.EnableCache,
	}

	result := engine.Synthesize(req)
	if result.Status != "OK" {
		log.Fatalf("synthesis failed: %s: %s", result.Status, result.ErrorMessage)
	}

	log.Printf("🗣️  %d samples @ %dHz (%.0fms), cache_hit=%v", len(result.Audio.Samples.Data), result.Audio.SampleRate, result.Audio.DurationMS, result.CacheHit)
	log.Printf("⏱️  phonemize=%.1fms tokenize=%.1fms infer=%.1fms post=%.1fms",
		result.Stats.PhonemizationMS, result.Stats.TokenizationMS, result.Stats.InferenceMS, result.Stats.AudioPostMS)

	if *out != "" {
		if err := writeRawFloat32(*out, result.Audio.Samples); err != nil {
			log.Fatalf("write %s: %v", *out, err)
		}
		log.Printf("💾 wrote %s", *out)
	}
}

func writeRawFloat32(path string, samples *audio.FloatBuffer) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	buf := make([]byte, 4)
	for _, s := range samples.Data {
		binary.LittleEndian.PutUint32(buf, math.Float32bits(float32(s)))
		if _, err := f.Write(buf); err != nil {
			return err
		}
	}
	return nil
}
