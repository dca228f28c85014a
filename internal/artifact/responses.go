package artifact

var touchResponses = map[Mood][]string{
	MoodDormant: {
		"It feels cold and smooth, like polished glass.",
		"The surface is oddly warm despite appearing dormant.",
		"You feel a faint vibration, barely noticeable.",
		"It's surprisingly heavy for its size.",
		"Your fingers leave no mark on its pristine surface.",
		"A low hum resonates through your fingertips.",
		"The texture shifts between rough and smooth.",
		"It feels like touching frozen metal.",
		"A strange comfort washes over you as you touch it.",
		"You sense something sleeping deep within.",
	},
	MoodUnstable: {
		"It zaps your finger! Static electricity radiates from it.",
		"The artifact jerks away from your touch!",
		"Sparks dance across its surface where you touched.",
		"It's uncomfortably hot, you pull your hand back.",
		"The vibrations intensify at your touch, almost painful.",
		"Colors swirl violently across its surface.",
		"Your hand tingles for several seconds afterward.",
		"It emits a high-pitched whine when touched.",
		"The artifact seems to pulse with your heartbeat.",
		"You feel dizzy and disoriented for a moment.",
	},
	MoodVoracious: {
		"It feels heavy, almost as if it's pulling your hand down.",
		"The artifact seems to grip your fingers. You have to pull away.",
		"Your hand sinks into its surface slightly, like thick mud.",
		"It's warm and pulsing, as if alive.",
		"You feel an overwhelming urge to keep holding it.",
		"The weight seems to double the moment you touch it.",
		"Golden light seeps from beneath your fingertips.",
		"It feels sticky, as if reluctant to let go.",
		"A deep hunger emanates from within.",
		"Your reflection in its surface looks... different.",
	},
	MoodEerie: {
		"Your hand passes through a mist. You feel a chill in your spine.",
		"The artifact isn't quite solid. Your fingers sink through its edges.",
		"Whispers echo in your mind the moment you touch it.",
		"You see fleeting shadows move across its surface.",
		"It feels like touching frozen smoke.",
		"Your hand goes numb where you touched it.",
		"You swear you hear your name whispered.",
		"The temperature drops noticeably around it.",
		"Dark tendrils of shadow wrap around your wrist briefly.",
		"You feel watched as your fingers make contact.",
	},
}

var disturbCalm = []string{
	"The artifact shudders and goes silent. The energy dissipates.",
	"A wave of calm washes over it. All tension fades.",
	"It releases a long sigh-like sound and settles.",
	"The chaotic energies drain away into nothingness.",
	"For a moment, it glows peacefully before returning to stillness.",
	"The artifact seems to... forgive you?",
	"All its accumulated energy releases as a gentle breeze.",
	"It resets itself, as if nothing ever happened.",
	"The artifact purrs softly and becomes docile.",
	"You feel a sense of mutual understanding.",
}

var disturbAnger = []string{
	"The artifact flares up violently! You shouldn't have done that.",
	"It SCREAMS with rage! Dark energy erupts from it!",
	"The artifact cracks further, glowing with fury!",
	"A shockwave knocks you backward! It's ANGRY.",
	"Lightning arcs between it and nearby objects!",
	"You hear glass shattering inside your mind!",
	"The air around it distorts with pure chaos!",
	"It brands a mark on your hand that burns!",
	"Reality itself seems to glitch near the artifact!",
	"You've awakened something that should have stayed asleep!",
}
