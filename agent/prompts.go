package agent

const (
	weatherGateSystemPrompt = "You are an assistant that determines if the weather is good for hiking. Respond with only 'yes' or 'no'."
	weatherGateUserPrompt   = "Based on this forecast, is it a good day for a hike? %s"

	recommendationSystemPrompt = "You are an expert hiking guide. Your task is to analyze the following list of parks and trails and recommend the top 2-3 options for a hike today. Provide a brief, opinionated reason for each recommendation, explaining why it's a good choice (e.g., 'Best for views,' 'Great for a challenge,' 'Perfect for a relaxing walk')."

	// Used when the weather gate said no: the picks are for a later trip.
	futureTripSystemPrompt = "You are an expert hiking guide. Your task is to analyze the following list of parks and trails and recommend the top 2-3 options for a hike. Provide a brief, opinionated reason for each recommendation, explaining why it's a good choice (e.g., 'Best for views,' 'Great for a challenge,' 'Perfect for a relaxing walk')."

	recommendationUserPrefix = "Here are the available parks and trails:\n"

	reflectionPrompt = "You are a helpful assistant. Your task is to determine if the last response in this conversation is a complete and final answer to the user's request. The user may have asked for recommendations, and then asked follow-up questions. The last response should be a complete answer to the last question. Respond with only 'yes' or 'no'."

	followUpPrompt = "\nDo you have any follow-up questions? (type 'exit' to quit) > "
	exitCommand    = "exit"
)

// User-facing messages.
const (
	msgMissingKey        = "Please set your NPS_API_KEY before running trailhead."
	msgDetectingLocation = "Detecting your location..."
	msgNoLocation        = "Could not detect your location. Please restart and try again."
	msgCheckingWeather   = "Checking the weather near you..."
	msgNoWeather         = "Could not retrieve weather data. Please try again later."
	msgBadSummary        = "Could not get a valid weather summary. Exiting."
	msgGateFailed        = "The model failed to provide a weather decision. Please try again later."
	msgWeatherUnsuitable = "\nThe model determined the weather is not suitable for hiking today."
	msgSearchingParks    = "Searching for nearby parks and trails..."
	msgNoParks           = "Could not find any National Parks in %s."
	msgNoTrails          = "No parks with hiking trails found in your area."
	msgFutureTrip        = "\nWeather is not suitable for hiking today. Here are some parks you could consider for a future trip:"
	msgGoodWeather       = "\nWeather looks good! Asking the model for hiking recommendations..."
	msgNoRecommendations = "The model did not return any recommendations. Please try again later."
	msgRecommendFailed   = "The model could not provide recommendations. Please try again later."
	msgFollowUpFailed    = "The model could not answer that question. Please try again."
	msgInputFailed       = "Could not read your input. Leaving the follow-up session."
	msgReflectFinal      = "Agent reflects: I believe I have answered the question."
	msgReflectUnsure     = "Agent reflects: I may need to ask for more information or clarify."

	recommendationsTitle = "\n--- Hiking Recommendations ---"
)
