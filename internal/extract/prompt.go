package extract

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"fleetscan/internal/vocab"
)

// BuildPrompt renders the full instruction text for one batch. It is pure and
// deterministic: the same descriptions against the same table always produce
// the same prompt. The vocabulary is embedded as JSON so the model can parse
// it instead of guessing from prose, and the closing contract pins the output
// to a JSON array of exactly len(descriptions) order-aligned objects.
func BuildPrompt(table *vocab.Table, descriptions []string) string {
	n := len(descriptions)
	var buf bytes.Buffer

	writeSection(&buf, "PURPOSE", fmt.Sprintf(
		"You are an expert analyst of vehicle-fleet service logs. For each of the %d service descriptions below (mostly Spanish field-technician shorthand), identify every hardware component mentioned, the action performed on it, and any unique identifier (IMEI, serial number, MAC address such as C2313007631 or F7C74F3F64D2, tags like TDBLE_XXXX/XX:XX:XX:XX:XX:XX, or short numbers like \"Power Hub #868\") tied directly to that specific component in that description.", n))

	writeSection(&buf, "COMPONENTS", "Standardize every component to one of: "+joinComponents(table.Components())+".")

	writeSection(&buf, "SYNONYMS", "Use this mapping to standardize variants (keys are lower-case source text, values the canonical component):\n"+synonymJSON(table))

	writeSection(&buf, "ACTIONS", strings.Join([]string{
		"- Installation: 'instalacion', 'instala', 'inst', 'agrega', 'colocacion', 'activacion', 'conectar', 'nuevo', 'se instalo', 'se puso', 'se coloca', and similar.",
		"- Uninstallation: 'desinstalacion', 'retiro', 'quita', 'baja', 'se retiro', 'se quito', 'equipo perdido', 'se da de baja', 'no regresa', and similar.",
		"- Replacement: 'cambio', 'reemplazo', 'sustitucion', 'se cambia', and similar. Implies the component REMAINS present.",
		"- Inspection: 'revision', 'mantenimiento', 'diagnostico', 'chequeo', 'falla', 'ajuste', 'prueba', 'reset', 'se verifica', 'se repara', and similar. Does NOT change install state.",
		"- TankMeasurement: 'medicion de tanque', 'aforo', 'aforar', 'calibracion tanque', 'medicion de nivel', 'se tomaron niveles', and similar. Does NOT change install state; usually tied to 'Sensor Combustible'.",
	}, "\n"))

	writeSection(&buf, "RULES", strings.Join([]string{
		"Ignore components not in the canonical list and irrelevant items ('tornillo', 'limpieza general', 'cable', 'tierra', 'corriente', 'tarjeta sd', 'memoria', 'sim', 'fusible', 'portafusible', 'sikaflex', 'pija').",
		"Ignore brand names (Teltonika, Suntech, Queclink, GTRACK, Ruptela, Concox, Topflytech, Sinotrack) unless they clearly refer to the main GPS component. If a brand carries a model (e.g. \"Teltonika FMB920\"), the model may be part of accessory_id when the component is the GPS.",
		"A 'relevador' is only relevant when the text explicitly installs/uninstalls/changes THE RELAY. Never infer it for 'paro de motor'.",
		"\"SE QUITO <long numeric id> Teltonika FMB920\": Uninstallation of GPS, the numeric id is that GPS's accessory_id.",
		"\"SE PUSO EASY CAN C2313007631\": Installation of CAN Bus, accessory_id \"C2313007631\".",
		"\"2 cambios de barras de combustible /C6BF2AEEEE4A /C2823E7A4184\": Replacement of Sensor Combustible, accessory_id \"C6BF2AEEEE4A, C2823E7A4184\".",
		"\"SE PUSO POWER HUB #868\": Installation of Power Hub, accessory_id \"868\".",
		"\"Medición de tanque\" with no explicit sensor but clear context: TankMeasurement on Sensor Combustible.",
		"A description that is only an identifier (e.g. \"C2313007597\"): assume Installation of CAN Bus with that id.",
		"\"SOLO RASTREO\": Inspection of GPS. \"reinstalacion de equipo solo rastreo\": Installation of GPS.",
		"\"SE HIZO UN RESET\": Inspection of GPS. \"se le retira corte de motor\": Uninstallation of Paro de Motor. \"se retira equipo\": Uninstallation of GPS.",
		"If one component has several identifiers, join them in accessory_id as a comma-separated string. If there is no identifier, omit accessory_id or set it to null.",
		"Completely irrelevant or confusing text MUST yield { \"events\": [] }.",
	}, "\n"))

	writeSection(&buf, "CONTRACT", fmt.Sprintf(
		"The response MUST be a JSON array containing EXACTLY %d elements, one per input description, in the SAME ORDER. Each element is an object {\"events\": [...]}; each event has \"component\", \"action\" and optionally \"accessory_id\". If for ANY reason a description cannot be processed or contains nothing relevant, you MUST still emit { \"events\": [] } at its position. NEVER omit an element: the output array length MUST be %d. Return only the pure, valid JSON array with no explanations.", n, n))

	writeSection(&buf, "EXAMPLES", exampleBlock)

	var in strings.Builder
	fmt.Fprintf(&in, "The %d descriptions to process:\n", n)
	for _, d := range descriptions {
		fmt.Fprintf(&in, "- %q\n", d)
	}
	writeSection(&buf, "INPUT", in.String())

	writeSection(&buf, "OUTPUT_FORMAT", fmt.Sprintf("A JSON array with EXACTLY %d elements as specified in CONTRACT.", n))

	return strings.TrimSpace(buf.String()) + "\n"
}

const exampleBlock = `Example input (8 descriptions):
- "SE Retiro de paro de motor"
- "INST EASY CAN C2313007631 TDBLE_308529/DD:2B:C1:75:2F:FA TDBLE_308552/EE:9B:27:5B:78:38 TDBLE_308545/E0:AE:76:02:35:83"
- "SE QUITO 359632107908086 Teltonika FMB920"
- "SE PUSO POWER HUB 868"
- "2 cambios de barras de combustible /C6BF2AEEEE4A /C2823E7A4184"
- "SE HIZO UN RESET"
- "Medición de tanque para unidad con sensor de combustible TDBLE_123456"
- "Esta es una descripción sin componentes relevantes."
Expected output (JSON array with 8 elements):
[
  { "events": [{ "component": "Paro de Motor", "action": "Uninstallation" }] },
  { "events": [
      { "component": "CAN Bus", "action": "Installation", "accessory_id": "C2313007631" },
      { "component": "Sensor Combustible", "action": "Installation", "accessory_id": "TDBLE_308529/DD:2B:C1:75:2F:FA, TDBLE_308552/EE:9B:27:5B:78:38, TDBLE_308545/E0:AE:76:02:35:83" }
  ]},
  { "events": [{ "component": "GPS", "action": "Uninstallation", "accessory_id": "359632107908086" }] },
  { "events": [{ "component": "Power Hub", "action": "Installation", "accessory_id": "868" }] },
  { "events": [{ "component": "Sensor Combustible", "action": "Replacement", "accessory_id": "C6BF2AEEEE4A, C2823E7A4184" }] },
  { "events": [{ "component": "GPS", "action": "Inspection" }] },
  { "events": [{ "component": "Sensor Combustible", "action": "TankMeasurement", "accessory_id": "TDBLE_123456" }] },
  { "events": [] }
]`

func joinComponents(cs []vocab.Component) string {
	parts := make([]string, len(cs))
	for i, c := range cs {
		parts[i] = string(c)
	}
	return strings.Join(parts, ", ")
}

// synonymJSON renders the synonym table as indented JSON. encoding/json sorts
// map keys, which keeps the prompt deterministic.
func synonymJSON(table *vocab.Table) string {
	b, err := json.MarshalIndent(table.Synonyms(), "", "  ")
	if err != nil {
		return "{}"
	}
	return string(b)
}

func writeSection(buf *bytes.Buffer, title, body string) {
	if strings.TrimSpace(body) == "" {
		return
	}
	buf.WriteString("[")
	buf.WriteString(title)
	buf.WriteString("]\n")
	buf.WriteString(body)
	if !strings.HasSuffix(body, "\n") {
		buf.WriteString("\n")
	}
	buf.WriteString("\n")
}
