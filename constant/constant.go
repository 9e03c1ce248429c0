package constant

const (
	DIR_RIGHT, ACT_A    = 0x00, 0x00
	DIR_LEFT, ACT_B     = 0x01, 0x01
	DIR_UP, ACT_SELECT  = 0x02, 0x02
	DIR_DOWN, ACT_START = 0x03, 0x03

	KEYS_TRACKED = 256
	MAX_HZ       = 1000

	DEFAULT_SIMULATE_HZ = 60.0
	DEFAULT_RENDER_HZ   = 30.0
	DEFAULT_PRESENT_FPS = 60.0

	WINDOW_TITLE  = "gameform"
	CANVAS_WIDTH  = 320
	CANVAS_HEIGHT = 240
	WINDOW_SCALE  = 2

	AUDIO_FREQ    = 44100
	CHANNELS      = 2
	AUDIO_SAMPLES = 1024
	MAX_VOICES    = 32
	MAX_VOLUME    = 100
)
