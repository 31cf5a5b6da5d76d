package generation

// Prompt templates use text/template over the row's columns plus any
// projections. A reference to an unknown column fails the render.

const (
	promptCourseFullname = "Genera un nome di corso coerente con la seguente categoria:\n" +
		"Nome: {{.category_name}}\n" +
		"Descrizione: {{.category_description}}"

	promptCourseShortname = "Genera un nome abbreviato per il corso '{{.fullname}}'"

	promptCourseSummary = "Scrivi una breve descrizione del contenuto del corso intitolato '{{.fullname}}'. " +
		"La descrizione deve essere chiara, coerente con il titolo, e utile per capire gli argomenti trattati."

	promptCourseLevel = "In base al contenuto del corso descritto qui sotto, assegna un livello di difficoltà da 1 a 5.\n" +
		"1 = molto facile, 5 = molto difficile.\n" +
		"Titolo del corso: {{.fullname}}\n" +
		"Descrizione del corso: {{.summary}}\n" +
		"Rispondi solo con il numero."

	promptResourceName = "Immagina una risorsa didattica testuale che rappresenti un capitolo o una sezione del corso descritto qui sotto.\n" +
		"La risorsa può riguardare qualsiasi parte del corso, non necessariamente l'inizio.\n" +
		"Nome del corso: {{.course_name}}\n" +
		"Descrizione del corso: {{.course_summary}}\n" +
		"Genera un titolo coerente e specifico per questa risorsa.\n" +
		"Rispondi solo con il nome della risorsa, senza spiegazioni."

	promptResourceIntro = "Scrivi una breve descrizione del contenuto della risorsa intitolata '{{.name}}'. " +
		"La descrizione deve essere chiara, coerente con il titolo, e utile per capire gli argomenti trattati."

	promptResourceLevel = "In base al contenuto della risorsa descritta qui sotto e al livello del corso da cui proviene, " +
		"assegna un livello di difficoltà da 1 a 5.\n" +
		"1 = molto facile, 5 = molto difficile.\n" +
		"Livello del corso: {{.course_level}}\n" +
		"Titolo della risorsa: {{.name}}\n" +
		"Descrizione della risorsa: {{.intro}}\n" +
		"Rispondi solo con il numero."
)
