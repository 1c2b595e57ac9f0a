// Package vocab holds the hand-curated controlled vocabulary for service
// descriptions: the canonical hardware component set, the synonym table that
// folds free-text variants onto it, and the five-action taxonomy. Extending
// the vocabulary is data entry, not code: edit the builtin tables or supply a
// YAML override file.
package vocab

// Component is a canonical hardware component tag.
type Component string

// Unknown is the sentinel for text that resolves to no canonical component.
// Events with an Unknown component are dropped, never retained.
const Unknown Component = "Unknown"

// Action is a canonical maintenance action tag.
type Action string

const (
	Installation    Action = "Installation"
	Uninstallation  Action = "Uninstallation"
	Replacement     Action = "Replacement"
	Inspection      Action = "Inspection"      // neutral, does not change install state
	TankMeasurement Action = "TankMeasurement" // neutral, fuel-sensor specific
)

// Actions lists the full action taxonomy in keyword-scan priority order.
var Actions = []Action{Installation, Uninstallation, Replacement, TankMeasurement, Inspection}

// Components is the closed canonical component set.
var Components = []Component{
	"GPS", "Paro de Motor", "Boton Panico", "Antena GPS", "Antena GPRS",
	"Arnés", "Sensor Puerta", "Sensor Combustible", "Sensor Temperatura",
	"Sensor Desenganche", "Sensor Impacto", "Sensor Jamming", "Power Hub",
	"iButton", "Chapa Electronica", "Bocina",
	"Microfono", "Telemetria", "CAN Bus", "Camara", "Modulo Voz", "Display",
	"Sensor DMS", "Sensor Fatiga", "GPS Señuelo",
	"Kit ADAS/DMS", "GPS Portatil", "Bateria Respaldo", "Sirena", "MDVR",
	"Relevador", "Teclado",
}

// synonyms maps lower-cased free-text variants onto canonical components.
// Source logs are Spanish field-technician shorthand; keys must stay
// lower-case and whitespace-collapsed.
var synonyms = map[string]Component{
	// GPS and variants
	"gps": "GPS", "dispositivo": "GPS", "equipo": "GPS", "localizador": "GPS",
	"unidad gps": "GPS", "equ": "GPS", "unidad": "GPS", "equipo gps": "GPS",
	"gtrack pro": "GPS", "gtrack-pro": "GPS", "gtrack": "GPS", "trace5": "GPS",
	"teltonika fmb920": "GPS", "teltonika fm3612": "GPS", "teltonika fmc920": "GPS",
	"teltonika fmc130": "GPS", "teltonika fmu125": "GPS", "teltonika fmu130": "GPS",
	"teltonika fmm130": "GPS", "teltonika fmb120": "GPS",
	"suntech st3300": "GPS", "suntech st4300": "GPS", "suntech st300": "GPS",
	"ruptela trace5": "GPS", "ruptela fm eco4 light": "GPS", "ruptela pro5 lite": "GPS",
	"ruptela hcv5": "GPS", "concox gt06n": "GPS", "concox gt06": "GPS",
	"queclink gv310lau": "GPS", "topflytech tlw1-4a/e": "GPS", "dk12": "GPS",

	"gps portatil": "GPS Portatil", "portatil": "GPS Portatil",
	"equipo portatil": "GPS Portatil", "gtrackflex": "GPS Portatil",
	"gtrack flex": "GPS Portatil", "sinotrack st-901": "GPS Portatil",

	"señuelo": "GPS Señuelo", "gps señuelo": "GPS Señuelo",

	// engine stop and variants
	"paro motor": "Paro de Motor", "cortacorriente": "Paro de Motor",
	"corta corriente": "Paro de Motor", "corte de motor": "Paro de Motor",
	"bloqueo de motor": "Paro de Motor", "paro": "Paro de Motor",
	"paro de aceleracion": "Paro de Motor", "bloqueo de acelerador": "Paro de Motor",
	"corte": "Paro de Motor", "inst corte": "Paro de Motor",

	// panic button and variants
	"boton de panico": "Boton Panico", "pánico": "Boton Panico", "panico": "Boton Panico",
	"botón pánico": "Boton Panico", "boton": "Boton Panico",
	"boton asistencia": "Boton Panico", "botón de asistencia": "Boton Panico",

	// antennas
	"antena gps":     "Antena GPS",
	"antena gprs":    "Antena GPRS",
	"antena celular": "Antena GPRS",

	// harness
	"arnes": "Arnés", "cableado": "Arnés", "arnés": "Arnés",

	// door sensors
	"sensor de puerta": "Sensor Puerta", "sensor puerta": "Sensor Puerta",
	"magnetico puerta": "Sensor Puerta", "sensor magnético": "Sensor Puerta",
	"sensor de apertura": "Sensor Puerta", "sensor de apertura de puerta": "Sensor Puerta",
	"sensor de puerta cableado": "Sensor Puerta", "sensor de puerta magnetico": "Sensor Puerta",
	"sensores de apertura": "Sensor Puerta",

	// fuel sensors
	"sensor de combustible": "Sensor Combustible", "sensor combustible": "Sensor Combustible",
	"medidor combustible": "Sensor Combustible", "sensor diesel": "Sensor Combustible",
	"barras de combustible": "Sensor Combustible", "barra de combustible": "Sensor Combustible",
	"barra": "Sensor Combustible", "barras": "Sensor Combustible", "td ble": "Sensor Combustible",

	// temperature sensors
	"sensor de temperatura": "Sensor Temperatura", "sensor temperatura": "Sensor Temperatura",
	"termometro": "Sensor Temperatura", "sensor t°": "Sensor Temperatura",
	"sensor de temperatura bluetooth": "Sensor Temperatura",
	"sensor de temperatura cableado":  "Sensor Temperatura",
	"sensor tipo temp":                "Sensor Temperatura",
	"sensor bluetooth":                "Sensor Temperatura",
	"eye sensor":                      "Sensor Temperatura",
	"temp sensor":                     "Sensor Temperatura",
	"ble sensor":                      "Sensor Temperatura",
	"sensor t":                        "Sensor Temperatura",
	"dallas":                          "Sensor Temperatura",

	// other sensors
	"sensor de desenganche": "Sensor Desenganche", "sensor desenganche": "Sensor Desenganche",
	"sensor quinta rueda": "Sensor Desenganche",
	"sensor de impacto":   "Sensor Impacto", "sensor impacto": "Sensor Impacto",
	"sensor colision": "Sensor Impacto", "sensor de colision": "Sensor Impacto",
	"sensor jamming": "Sensor Jamming", "detector jamming": "Sensor Jamming",
	"anti jamming": "Sensor Jamming", "detector de jamming": "Sensor Jamming",
	"sensor dms":    "Sensor DMS",
	"sensor fatiga": "Sensor Fatiga", "sensor de fatiga": "Sensor Fatiga",

	// power hub and variants
	"power hub": "Power Hub", "hub de energia": "Power Hub", "hub energia": "Power Hub",
	"powerhub": "Power Hub", "power lite": "Power Hub", "pw hub": "Power Hub",
	"phub": "Power Hub", "pwl": "Power Hub",

	// backup battery
	"bateria respaldo": "Bateria Respaldo", "bateria de respaldo": "Bateria Respaldo",
	"backup battery": "Bateria Respaldo", "batería respaldo": "Bateria Respaldo",
	"bateria": "Bateria Respaldo", "pila interna": "Bateria Respaldo",

	// iButton and variants
	"ibutton": "iButton", "identificador operador": "iButton", "llave dallas": "iButton",
	"lector ibutton": "iButton", "cableado de ibutton": "iButton", "llave": "iButton",

	// electronic lock
	"chapa electronica": "Chapa Electronica", "candado electronico": "Chapa Electronica",
	"electrochapa": "Chapa Electronica", "chapa eléctrica": "Chapa Electronica",

	"sirena": "Sirena",

	"microfono": "Microfono", "escucha cabina": "Microfono",
	"micrófono": "Microfono", "micro": "Microfono",

	"bocina": "Bocina", "altavoz": "Bocina",

	"telemetria": "Telemetria",

	// CAN bus and variants
	"can bus": "CAN Bus", "computadora vehiculo": "CAN Bus", "lector canbus": "CAN Bus",
	"can": "CAN Bus", "easy can": "CAN Bus", "easycan": "CAN Bus",
	"canst20": "CAN Bus", "can-st20": "CAN Bus",

	// camera and variants
	"camara": "Camara", "cámara": "Camara", "camaras": "Camara",
	"camaras exteriores": "Camara", "camara frontal": "Camara",
	"camara tipo domo": "Camara", "sistema de camaras": "Camara",
	"camara exterior": "Camara",

	"mdvr": "MDVR", "dvr": "MDVR",

	"modulo de voz": "Modulo Voz", "voz": "Modulo Voz", "módulo voz": "Modulo Voz",

	"display": "Display", "pantalla": "Display",

	// ADAS/DMS kit
	"adas": "Kit ADAS/DMS", "dms": "Kit ADAS/DMS", "kit adas": "Kit ADAS/DMS",
	"sistema adas": "Kit ADAS/DMS", "sistema adas y dms": "Kit ADAS/DMS",
	"kit adas + dms": "Kit ADAS/DMS",

	"relevador": "Relevador",
	"teclado":   "Teclado",
}

// actionKeywords drives the fallback keyword scan in NormalizeAction. Order
// matters: first matching group wins.
var actionKeywords = []struct {
	Action   Action
	Keywords []string
}{
	{Installation, []string{
		"instalacion", "instala", "instalar", "inst", "agrega", "colocacion",
		"activacion", "conectar", "nuevo", "puesta en marcha", "se instalo",
		"se puso", "instalación nueva", "se le instala", "se asigna",
		"se le aplica", "con instalacion de", "se coloca",
	}},
	{Uninstallation, []string{
		"desinstalacion", "desinstala", "desinstalar", "retiro", "quita", "baja",
		"eliminar", "desconectar", "se retiro", "se quito", "retiro de",
		"desisntalacion", "equipo perdido", "se da de baja", "se retira",
		"no regresa", "baja en plataforma", "desistalacion", "desinstalación",
	}},
	{Replacement, []string{
		"cambio", "cambiar", "reemplazo", "reemplazar", "sustitucion",
		"sustituir", "se hace cambio de", "se cambia", "cambiio",
	}},
	{TankMeasurement, []string{
		"medicion de tanque", "medir tanque", "calibracion tanque", "aforar",
		"aforo", "verificacion de nivel", "medicion inicial", "registro de nivel",
		"chequeo de nivel", "se midio el tanque", "medicion diesel",
		"medicion gasolina", "se tomaron niveles", "medición de nivel",
	}},
	{Inspection, []string{
		"revision", "revisar", "mantenimiento", "diagnostico", "chequeo",
		"verificacion", "configuracion", "falla", "problema", "ajuste",
		"soporte", "prueba", "limpieza", "actualizacion", "no funciona",
		"reporta", "visita tecnica", "reset", "se hizo un reset", "se checa",
		"se verifica", "se conecta", "se reconecta", "energizada", "reubicó",
		"desconecta arnes", "se aplica reset", "se cambia conexion",
		"se cambia tierra", "se cambia corriente", "reacomodan", "calibracion",
		"cotejo", "se fija", "se ajusta", "revisan conexiones", "se energiza",
		"se restablece", "se monitorea", "se reubica", "se corrige",
		"se repara", "se activa", "se asigna este equipo", "se recupera equipo",
	}},
}
