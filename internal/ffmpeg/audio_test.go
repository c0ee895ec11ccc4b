package ffmpeg

import (
	"math"
	"testing"
)

const silenceLog = `[silencedetect @ 0x55d] silence_start: 12.456
[silencedetect @ 0x55d] silence_end: 15.201 | silence_duration: 2.745
[silencedetect @ 0x55d] silence_start: 48.9
[silencedetect @ 0x55d] silence_end: 52.1 | silence_duration: 3.2
size=N/A time=00:01:30.00 bitrate=N/A speed= 112x
`

func TestParseSilenceOutput(t *testing.T) {
	segments := parseSilenceOutput(silenceLog)
	if len(segments) != 2 {
		t.Fatalf("got %d segments, want 2", len(segments))
	}

	first := segments[0]
	if math.Abs(first.Start-12.456) > 1e-9 {
		t.Errorf("start = %f, want 12.456", first.Start)
	}
	if math.Abs(first.End-15.201) > 1e-9 {
		t.Errorf("end = %f, want 15.201", first.End)
	}
	if math.Abs(first.Duration-2.745) > 1e-9 {
		t.Errorf("duration = %f, want 2.745", first.Duration)
	}
}

func TestParseSilenceOutputNoDurationField(t *testing.T) {
	out := `[silencedetect @ 0x1] silence_start: 10.0
[silencedetect @ 0x1] silence_end: 14.5
`
	segments := parseSilenceOutput(out)
	if len(segments) != 1 {
		t.Fatalf("got %d segments, want 1", len(segments))
	}
	if math.Abs(segments[0].Duration-4.5) > 1e-9 {
		t.Errorf("derived duration = %f, want 4.5", segments[0].Duration)
	}
}

func TestParseSilenceOutputEmpty(t *testing.T) {
	if got := parseSilenceOutput("frame=  100 fps= 25 q=-0.0 size=N/A\n"); len(got) != 0 {
		t.Errorf("noise-only log produced %d segments", len(got))
	}
}

const volumeLog = `[Parsed_volumedetect_0 @ 0x55f] n_samples: 4418560
[Parsed_volumedetect_0 @ 0x55f] mean_volume: -21.5 dB
[Parsed_volumedetect_0 @ 0x55f] max_volume: -3.2 dB
[Parsed_volumedetect_0 @ 0x55f] histogram_3db: 14
`

func TestParseVolumeOutput(t *testing.T) {
	stats := parseVolumeOutput(volumeLog)
	if math.Abs(stats.MeanVolume-(-21.5)) > 1e-9 {
		t.Errorf("mean = %f, want -21.5", stats.MeanVolume)
	}
	if math.Abs(stats.MaxVolume-(-3.2)) > 1e-9 {
		t.Errorf("max = %f, want -3.2", stats.MaxVolume)
	}
}

func TestParseVolumeOutputMissing(t *testing.T) {
	stats := parseVolumeOutput("no relevant lines here\n")
	if stats.MeanVolume != 0 || stats.MaxVolume != 0 {
		t.Errorf("stats from empty log = %+v, want zeros", stats)
	}
}
