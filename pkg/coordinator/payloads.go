package coordinator

// Inbound event payloads (spec.md §4.9).

type joinRoomPayload struct {
	RoomID   string `json:"room_id"`
	Role     string `json:"role"`
	Token    string `json:"token,omitempty"` // required when role == doctor
	Language string `json:"language,omitempty"`
}

type sendMessagePayload struct {
	Content  string `json:"content"`
	Language string `json:"language,omitempty"`
	IsAudio  bool   `json:"is_audio,omitempty"`
}

type audioChunkPayload struct {
	Chunk    string `json:"chunk"` // base64
	IsLast   bool   `json:"is_last"`
	Language string `json:"language,omitempty"`
}

type requestTTSPayload struct {
	Text      string `json:"text"`
	Language  string `json:"language,omitempty"`
	MessageID string `json:"message_id,omitempty"`
}

type updateLanguagePayload struct {
	Language string `json:"language"`
}

// Outbound frame payloads.

type participants struct {
	Patient bool `json:"patient"`
	Doctor  bool `json:"doctor"`
}

type roomJoinedPayload struct {
	RoomID       string       `json:"room_id"`
	Role         string       `json:"role"`
	DoctorID     string       `json:"doctor_id,omitempty"`
	Participants participants `json:"participants"`
}

type userJoinedPayload struct {
	Role     string `json:"role"`
	DoctorID string `json:"doctor_id,omitempty"`
}

type userLeftPayload struct {
	Role     string `json:"role"`
	DoctorID string `json:"doctor_id,omitempty"`
}

type newMessagePayload struct {
	ID                 string `json:"id"`
	Content            string `json:"content"`
	Language           string `json:"language"`
	TargetLanguage     string `json:"target_language,omitempty"`
	TranslatedContent  string `json:"translated_content,omitempty"`
	TranslationErrored bool   `json:"translation_errored"`
	SenderRole         string `json:"sender_role"`
	SenderID           string `json:"sender_id,omitempty"`
	Timestamp          string `json:"timestamp"`
	IsAudioOrigin      bool   `json:"is_audio_origin"`
}

type messageSentPayload struct {
	ID        string `json:"id"`
	Timestamp string `json:"timestamp"`
}

type messageTranslatedPayload struct {
	ID                string `json:"id"`
	TranslatedContent string `json:"translated_content"`
	TargetLanguage    string `json:"target_language"`
}

type cipherKeyExchangePayload struct {
	CipherKey string `json:"cipher_key"`
}

type cipherKeyInvalidatedPayload struct {
	Reason string `json:"reason"`
}

type audioTranscribedPayload struct {
	Text     string `json:"text"`
	Language string `json:"language"`
}

type audioStreamPayload struct {
	Chunk     string `json:"chunk"`
	Index     int    `json:"index"`
	Total     int    `json:"total"`
	IsLast    bool   `json:"is_last"`
	MessageID string `json:"message_id,omitempty"`
}

type sttErrorPayload struct {
	Message string `json:"message"`
}

type ttsErrorPayload struct {
	MessageID string `json:"message_id,omitempty"`
	Message   string `json:"message"`
}

type languageUpdatedPayload struct {
	Language string `json:"language"`
}

type errorPayload struct {
	Message string `json:"message"`
}
