package corpus

// AllianceDocuments returns the curated airline alliance documents:
// one per major alliance plus three explaining how alliances shape
// route networks.
func AllianceDocuments() []Document {
	return []Document{
		{
			Type:    TypeAlliance,
			Title:   "Star Alliance - World's Largest Airline Alliance",
			Content: `Star Alliance is the world's largest global airline alliance, founded in 1997. It connects passengers to over 1,300 destinations in more than 190 countries. Star Alliance member airlines include United Airlines, Lufthansa, Air Canada, ANA (All Nippon Airways), Singapore Airlines, Turkish Airlines, Swiss International Air Lines, Austrian Airlines, Brussels Airlines, LOT Polish Airlines, Scandinavian Airlines (SAS), TAP Air Portugal, Avianca, Copa Airlines, Air China, Asiana Airlines, EVA Air, Shenzhen Airlines, Thai Airways, Air India, Aegean Airlines, Ethiopian Airlines, South African Airways, and EgyptAir. Alliance members coordinate their route networks to provide seamless connections through major hub airports. Passengers benefit from unified frequent flyer programs, lounge access, and coordinated schedules. Star Alliance hubs include Frankfurt (Lufthansa), Chicago and Houston (United), Toronto (Air Canada), Tokyo (ANA), Singapore (Singapore Airlines), and Istanbul (Turkish Airlines). The alliance enables member airlines to offer extensive global connectivity without operating all routes themselves, significantly expanding route networks through codeshare agreements and interline connections.`,
			Metadata: map[string]any{
				"alliance_name": "Star Alliance",
				"founded":       1997,
				"member_count":  26,
				"destinations":  1300,
				"countries":     190,
				"category":      "airline_alliance",
			},
		},
		{
			Type:    TypeAlliance,
			Title:   "OneWorld Alliance - Premium Global Network",
			Content: `OneWorld is a global airline alliance founded in 1999, serving over 900 destinations in more than 170 countries. OneWorld member airlines include American Airlines, British Airways, Cathay Pacific, Qantas, Qatar Airways, Iberia, Finnair, Japan Airlines (JAL), Malaysia Airlines, Royal Jordanian, SriLankan Airlines, and Alaska Airlines. The alliance is known for its focus on premium service and strong presence in key business markets. OneWorld members coordinate their route networks to provide comprehensive global coverage, with major hubs at London Heathrow (British Airways), Hong Kong (Cathay Pacific), Dallas and Miami (American Airlines), Sydney (Qantas), Doha (Qatar Airways), Madrid (Iberia), Tokyo (JAL), and Helsinki (Finnair). Passengers enjoy reciprocal benefits including priority boarding, lounge access, and frequent flyer mile accumulation across all member airlines. The alliance structure allows airlines to expand their route networks significantly through partnerships rather than operating all routes independently. OneWorld focuses on connecting major business centers and premium destinations worldwide.`,
			Metadata: map[string]any{
				"alliance_name": "OneWorld",
				"founded":       1999,
				"member_count":  13,
				"destinations":  900,
				"countries":     170,
				"category":      "airline_alliance",
			},
		},
		{
			Type:    TypeAlliance,
			Title:   "SkyTeam Alliance - Global Airline Partnership",
			Content: `SkyTeam is a global airline alliance founded in 2000, connecting passengers to over 1,000 destinations in more than 170 countries. SkyTeam member airlines include Delta Air Lines, Air France, KLM Royal Dutch Airlines, Korean Air, China Eastern Airlines, China Airlines, Aeroméxico, Aerolíneas Argentinas, Air Europa, Alitalia (ITA Airways), Czech Airlines, Garuda Indonesia, Kenya Airways, Middle East Airlines, Saudia, Tarom, Vietnam Airlines, and XiamenAir. The alliance emphasizes seamless travel through coordinated schedules and shared facilities at major airports. Key SkyTeam hubs include Atlanta and Minneapolis (Delta), Paris (Air France), Amsterdam (KLM), Seoul (Korean Air), Shanghai (China Eastern), Mexico City (Aeroméxico), and Rome (ITA Airways). Alliance members share airport lounges, coordinate flight schedules for convenient connections, and offer reciprocal frequent flyer benefits. SkyTeam's network design allows passengers to connect efficiently between continents through strategically positioned hub airports. The alliance structure enables member airlines to offer extensive route coverage across North America, Europe, Asia, Latin America, Africa, and the Middle East without each airline needing to operate all routes independently.`,
			Metadata: map[string]any{
				"alliance_name": "SkyTeam",
				"founded":       2000,
				"member_count":  19,
				"destinations":  1000,
				"countries":     170,
				"category":      "airline_alliance",
			},
		},
		{
			Type:    TypeAlliance,
			Title:   "How Airline Alliances Affect Route Networks",
			Content: `Airline alliances fundamentally transform how route networks operate by enabling cooperation between competing airlines. Alliances expand route coverage dramatically - a single airline might operate 200 destinations, but through alliance partnerships can offer connections to over 1,000 destinations worldwide. This is achieved through codeshare agreements, where airlines sell tickets on each other's flights, and interline agreements that allow seamless baggage transfer and coordinated schedules. Hub coordination is a key benefit: alliance members schedule flights to arrive and depart in coordinated waves at major hubs, minimizing connection times for passengers. For example, Star Alliance coordinates schedules at Frankfurt, allowing efficient connections between European, Asian, and American flights. Route networks become more efficient as alliance members avoid duplicating routes and instead focus on feeding passengers to partner airlines. Smaller airlines gain access to global networks they couldn't build independently, while large carriers expand their reach without the cost of operating additional aircraft. Passengers benefit from unified frequent flyer programs, shared airport lounges, and consistent service standards across member airlines. Alliances also enable airlines to maintain virtual presence in markets they don't serve directly - American Airlines can sell tickets to Bangkok via partner Japan Airlines without flying there themselves. This alliance structure has reshaped global aviation from isolated airline networks into three major alliance ecosystems (Star Alliance, OneWorld, SkyTeam) plus independent carriers.`,
			Metadata: map[string]any{
				"topic":    "alliance_impact",
				"category": "airline_alliance",
				"keywords": []string{"route networks", "codeshare", "hub coordination", "connectivity"},
			},
		},
		{
			Type:    TypeAlliance,
			Title:   "Codeshare Agreements and Airline Partnerships",
			Content: `Codeshare agreements are the foundation of modern airline alliances and route network expansion. In a codeshare arrangement, one airline operates the flight while partner airlines sell seats using their own flight numbers. For example, a flight from New York to Frankfurt operated by Lufthansa (LH400) might also be sold as United UA8840, Air Canada AC9040, and other Star Alliance partners. This allows airlines to offer more destinations without operating additional aircraft. There are several types of partnerships: Codeshare agreements (shared flight numbers), interline agreements (coordinated ticketing and baggage), joint ventures (revenue sharing on specific routes), and full alliance membership (comprehensive cooperation). Alliances coordinate beyond just codeshares - they align schedules so connecting flights arrive and depart efficiently, share airport facilities like lounges and check-in counters, and integrate frequent flyer programs. Metal-neutral joint ventures go further, with airlines sharing revenues on entire route networks, essentially operating as a single carrier on those routes. Examples include the transatlantic joint venture between Air France-KLM, Delta, and Virgin Atlantic. These partnerships dramatically expand each airline's effective network size while allowing them to focus aircraft and resources on routes they operate most efficiently.`,
			Metadata: map[string]any{
				"topic":    "codeshare_partnerships",
				"category": "airline_alliance",
				"keywords": []string{"codeshare", "partnerships", "joint ventures", "cooperation"},
			},
		},
		{
			Type:    TypeAlliance,
			Title:   "Alliance Hub-and-Spoke Networks and Connectivity",
			Content: `Airline alliances optimize global connectivity through coordinated hub-and-spoke networks. Each alliance member operates focused hubs in their region, and alliances coordinate schedules across these hubs to create seamless worldwide connectivity. Star Alliance exemplifies this with major hubs including Frankfurt and Munich (Lufthansa), Chicago and Houston (United), Toronto (Air Canada), Tokyo (ANA), Singapore (Singapore Airlines), and Istanbul (Turkish Airlines). A passenger traveling from Denver to Bangkok might fly United to San Francisco, then connect to ANA to Tokyo, and finally Thai Airways to Bangkok - all on a single ticket with coordinated schedules and checked baggage. Hub coordination involves banking - airlines schedule multiple arrivals during a short window, allow connection time, then schedule coordinated departures. This creates waves of connectivity throughout the day. Alliance partners time their long-haul flights to align with these waves. Without alliances, airlines would need to operate point-to-point routes between hundreds of city pairs. Hub-and-spoke alliance networks reduce this to each airline operating efficiently within their region and feeding passengers to alliance partners. This is why passengers flying internationally often connect through multiple hubs operated by different alliance member airlines. The system maximizes route coverage while minimizing the number of aircraft and routes each individual airline must operate.`,
			Metadata: map[string]any{
				"topic":    "hub_spoke_alliances",
				"category": "airline_alliance",
				"keywords": []string{"hub airports", "connectivity", "network design", "connections"},
			},
		},
	}
}

// GeneralKnowledgeDocuments returns the curated aviation basics documents.
func GeneralKnowledgeDocuments() []Document {
	return []Document{
		{
			Type:    TypeGeneral,
			Title:   "Understanding Airport Codes (IATA and ICAO)",
			Content: `Airports are identified by standardized codes. The IATA (International Air Transport Association) code is a three-letter code used for passenger bookings and baggage tags, like JFK for John F. Kennedy International Airport or LAX for Los Angeles International Airport. The ICAO (International Civil Aviation Organization) code is a four-letter code used for air traffic control and flight planning, like KJFK or KLAX. When booking flights, passengers typically use IATA codes.`,
			Metadata: map[string]any{"topic": "airport_codes", "category": "basics"},
		},
		{
			Type:    TypeGeneral,
			Title:   "Direct Flights vs. Connecting Flights",
			Content: `A direct flight travels from the origin airport to the destination airport without any stops, offering the fastest travel time. Connecting flights require at least one stop at an intermediate airport where passengers may need to change planes. While direct flights are more convenient, connecting flights often offer more scheduling flexibility and can sometimes be more economical. When searching for flights, the number of stops is an important consideration for travel planning.`,
			Metadata: map[string]any{"topic": "flight_types", "category": "travel_planning"},
		},
		{
			Type:    TypeGeneral,
			Title:   "What is a Hub Airport?",
			Content: `A hub airport is a major airport that serves as a central connection point for an airline or multiple airlines. Hub airports typically have a high volume of connecting flights, allowing passengers to transfer between flights to reach their final destinations. Major hubs often serve hundreds of destinations and are operated by one or more dominant airlines. Examples include major international airports that connect flights from multiple regions.`,
			Metadata: map[string]any{"topic": "hub_airports", "category": "infrastructure"},
		},
		{
			Type:    TypeGeneral,
			Title:   "How Airlines Operate Routes",
			Content: `Airlines operate routes based on demand, profitability, and strategic network planning. Popular routes between major cities often have multiple daily flights from competing airlines. Some routes are operated as codeshare agreements, where multiple airlines sell seats on the same flight. Airlines use hub-and-spoke models to efficiently connect passengers through central airports, or point-to-point models for direct connections between cities.`,
			Metadata: map[string]any{"topic": "airline_operations", "category": "industry"},
		},
	}
}
