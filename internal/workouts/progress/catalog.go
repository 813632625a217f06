package progress

var predefinedExercises = []string{
	"Chest Press Machine",
	"Chest Press Dumbell",
	"Chest Press Barbell",
	"Incline Chest Press Dumbell",
	"Incline Chest Press Barbell",
	"Decline Chest Press Barbell",
	"Decline Chest Press Dumbell",
	"Back Lat Pulldown",
	"Back Cable Row",
	"Back Dumbell Row",
	"Back Pull-ups",
	"Back Chin-ups",
	"Back Overhead Pulldown",
	"Bicep Curls",
	"Bicep Hammer Curls",
	"Bicep Concentration Curls",
	"Bicep Preacher Curls",
	"Tricep Dips",
	"Tricep Overhead Extension Dumbell",
	"Tricep Rope Pushdown",
	"Shoulder Press",
	"Shoulder Rear Delt Fly",
	"Shoulder Lateral Raises Dumbell",
	"Shoulder Front Raises Dumbell",
	"Squats",
	"Pop Squats",
	"Leg Press",
	"Leg Curl",
	"Leg Extension",
	"Lunges",
	"Side lunges",
	"Calf Raises",
	"Deadlifts",
	"Single leg deadlifts",
	"Hip Thrusts",
	"Glute Bridge",
	"Plank",
	"Side Plank",
	"Crunches",
	"Russian Twists",
	"Leg Raises",
	"Burpees",
	"Mountain Climbers",
	"Jumping Jacks",
}

// Catalog returns a copy of the predefined exercise names offered to new users.
func Catalog() []string {
	return append([]string(nil), predefinedExercises...)
}
