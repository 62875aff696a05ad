package constant

// Watermill topic for emotion analysis jobs.
const EmotionAnalysisTopic = "note.emotion.analyze"
